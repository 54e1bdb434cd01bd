package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"financegateway/internal/provider"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(provider.HTTPClientConfig{
		BaseURL:    server.URL,
		Timeout:    2 * time.Second,
		RetryCount: -1,
	})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func assertFetchErrorType(t *testing.T, err error, want provider.ErrorType) {
	t.Helper()
	var fe *provider.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *provider.FetchError", err)
	}
	if fe.Type != want {
		t.Errorf("error type = %q, want %q (%v)", fe.Type, want, err)
	}
}

func TestClient_Quote_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v7/finance/quote" {
			t.Errorf("path = %q, want /v7/finance/quote", r.URL.Path)
		}
		if r.URL.Query().Get("symbols") != "AAPL" {
			t.Errorf("symbols = %q, want AAPL", r.URL.Query().Get("symbols"))
		}
		writeJSON(w, http.StatusOK, `{
			"quoteResponse": {
				"result": [{
					"symbol": "AAPL",
					"shortName": "Apple Inc.",
					"currency": "USD",
					"regularMarketPrice": 178.23,
					"regularMarketChange": 1.73,
					"regularMarketChangePercent": 0.98,
					"regularMarketVolume": 50000000
				}],
				"error": null
			}
		}`)
	})

	q, err := client.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Quote() returned unexpected error: %v", err)
	}
	if q.Symbol != "AAPL" || q.ShortName != "Apple Inc." {
		t.Errorf("Quote() = %+v", q)
	}
	if q.RegularMarketPrice != 178.23 {
		t.Errorf("price = %.2f, want 178.23", q.RegularMarketPrice)
	}
	if q.RegularMarketVolume != 50000000 {
		t.Errorf("volume = %d, want 50000000", q.RegularMarketVolume)
	}
}

func TestClient_Quote_EmptyResultIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"quoteResponse": {"result": [], "error": null}}`)
	})

	_, err := client.Quote(context.Background(), "BADSYM")
	assertFetchErrorType(t, err, provider.ErrorTypeNotFound)
	if want := "not_found error: Quote not found for symbol: BADSYM"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestClient_Quote_HTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   provider.ErrorType
	}{
		{"not found", http.StatusNotFound, provider.ErrorTypeNotFound},
		{"rate limited", http.StatusTooManyRequests, provider.ErrorTypeRateLimit},
		{"unauthorized", http.StatusUnauthorized, provider.ErrorTypeClient},
		{"server error", http.StatusInternalServerError, provider.ErrorTypeServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, `{}`)
			})

			_, err := client.Quote(context.Background(), "AAPL")
			assertFetchErrorType(t, err, tt.want)
		})
	}
}

func TestClient_Quote_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(provider.HTTPClientConfig{BaseURL: url, RetryCount: -1})

	_, err := client.Quote(context.Background(), "AAPL")
	assertFetchErrorType(t, err, provider.ErrorTypeNetwork)
}

func TestClient_Quote_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Quote(ctx, "AAPL"); err == nil {
		t.Error("Quote() returned nil error for a cancelled context")
	}
}

func TestClient_Quote_CallerCancelIsNotNetworkError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := client.Quote(ctx, "AAPL")
	assertFetchErrorType(t, err, provider.ErrorTypeCanceled)
	if provider.IsRetryable(err) {
		t.Error("caller cancellation should not be retryable")
	}
}

func TestClient_Chart(t *testing.T) {
	period1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	period2 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/MSFT" {
			t.Errorf("path = %q, want /v8/finance/chart/MSFT", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("period1") != "1704067200" || q.Get("period2") != "1704240000" {
			t.Errorf("period1/period2 = %s/%s", q.Get("period1"), q.Get("period2"))
		}
		if q.Get("interval") != "1d" {
			t.Errorf("interval = %q, want 1d", q.Get("interval"))
		}
		writeJSON(w, http.StatusOK, `{
			"chart": {
				"result": [{
					"meta": {"symbol": "MSFT", "currency": "USD", "dataGranularity": "1d"},
					"timestamp": [1704117600, 1704204000],
					"indicators": {
						"quote": [{
							"open": [370.0, null],
							"high": [375.0, 380.0],
							"low": [368.0, 371.0],
							"close": [374.5, 378.9],
							"volume": [25000000, 21000000]
						}],
						"adjclose": [{"adjclose": [374.0, 378.4]}]
					}
				}],
				"error": null
			}
		}`)
	})

	chart, err := client.Chart(context.Background(), "MSFT", provider.ChartOptions{
		Period1:  period1,
		Period2:  period2,
		Interval: "1d",
	})
	if err != nil {
		t.Fatalf("Chart() returned unexpected error: %v", err)
	}

	if chart.Meta.Symbol != "MSFT" {
		t.Errorf("meta symbol = %q, want MSFT", chart.Meta.Symbol)
	}
	if len(chart.Quotes) != 2 {
		t.Fatalf("got %d candles, want 2", len(chart.Quotes))
	}
	if chart.Quotes[1].Open != nil {
		t.Errorf("second candle open = %v, want nil gap", *chart.Quotes[1].Open)
	}
	if c := chart.Quotes[1].Close; c == nil || *c != 378.9 {
		t.Errorf("second candle close = %v, want 378.9", c)
	}
	if a := chart.Quotes[0].AdjClose; a == nil || *a != 374.0 {
		t.Errorf("first candle adjclose = %v, want 374.0", a)
	}
	if !chart.Quotes[0].Date.Equal(time.Unix(1704117600, 0)) {
		t.Errorf("first candle date = %s", chart.Quotes[0].Date)
	}
}

func TestClient_Chart_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}}}`)
	})

	_, err := client.Chart(context.Background(), "GONE", provider.ChartOptions{Interval: "1d"})
	assertFetchErrorType(t, err, provider.ErrorTypeNotFound)
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "apple" || q.Get("quotesCount") != "5" || q.Get("newsCount") != "2" {
			t.Errorf("query = %v", q)
		}
		writeJSON(w, http.StatusOK, `{
			"quotes": [{"symbol": "AAPL", "shortname": "Apple Inc.", "quoteType": "EQUITY", "score": 20000}],
			"news": [{"uuid": "n1", "title": "Apple ships", "publisher": "Wire", "relatedTickers": ["AAPL"]}]
		}`)
	})

	res, err := client.Search(context.Background(), "apple", provider.SearchOptions{QuotesCount: 5, NewsCount: 2})
	if err != nil {
		t.Fatalf("Search() returned unexpected error: %v", err)
	}
	if len(res.Quotes) != 1 || res.Quotes[0].Symbol != "AAPL" {
		t.Errorf("quotes = %+v", res.Quotes)
	}
	if len(res.News) != 1 || res.News[0].Title != "Apple ships" {
		t.Errorf("news = %+v", res.News)
	}
}

func TestClient_Search_EmptyListsNotNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	res, err := client.Search(context.Background(), "zzzz", provider.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() returned unexpected error: %v", err)
	}
	if res.Quotes == nil || res.News == nil {
		t.Errorf("Search() = %+v, want empty non-nil slices", res)
	}
}

func TestClient_TrendingSymbols(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/finance/trending/US" {
			t.Errorf("path = %q, want /v1/finance/trending/US", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{
			"finance": {
				"result": [{"count": 3, "quotes": [{"symbol": "NVDA"}, {"symbol": "TSLA"}, {"symbol": "AAPL"}]}],
				"error": null
			}
		}`)
	})

	res, err := client.TrendingSymbols(context.Background(), "US", provider.TrendingOptions{Count: 2})
	if err != nil {
		t.Fatalf("TrendingSymbols() returned unexpected error: %v", err)
	}
	if res.Count != 2 || len(res.Quotes) != 2 || res.Quotes[0].Symbol != "NVDA" {
		t.Errorf("TrendingSymbols() = %+v, want first 2 symbols", res)
	}
}

func TestClient_RecommendationsBySymbol(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v6/finance/recommendationsbysymbol/AAPL" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{
			"finance": {
				"result": [{"symbol": "AAPL", "recommendedSymbols": [{"symbol": "MSFT", "score": 0.27}]}],
				"error": null
			}
		}`)
	})

	res, err := client.RecommendationsBySymbol(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("RecommendationsBySymbol() returned unexpected error: %v", err)
	}
	if len(res.RecommendedSymbols) != 1 || res.RecommendedSymbols[0].Symbol != "MSFT" {
		t.Errorf("RecommendationsBySymbol() = %+v", res)
	}
}

func TestClient_Insights(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "AAPL" {
			t.Errorf("symbol = %q, want AAPL", r.URL.Query().Get("symbol"))
		}
		writeJSON(w, http.StatusOK, `{
			"finance": {
				"result": {"symbol": "AAPL", "recommendation": {"rating": "BUY"}, "sigDevs": []},
				"error": null
			}
		}`)
	})

	res, err := client.Insights(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Insights() returned unexpected error: %v", err)
	}
	if res.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", res.Symbol)
	}
	if string(res.Recommendation) != `{"rating": "BUY"}` {
		t.Errorf("recommendation = %s", res.Recommendation)
	}
}

func TestClient_Insights_NullResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"finance": {"result": null, "error": null}}`)
	})

	_, err := client.Insights(context.Background(), "ZZZZ")
	assertFetchErrorType(t, err, provider.ErrorTypeNotFound)
}

func TestClient_Screener(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("scrIds") != "day_gainers" || q.Get("count") != "2" {
			t.Errorf("query = %v", q)
		}
		writeJSON(w, http.StatusOK, `{
			"finance": {
				"result": [{
					"id": "day_gainers",
					"title": "Day Gainers",
					"total": 120,
					"quotes": [{"symbol": "ABC", "regularMarketPrice": 10.5}, {"symbol": "XYZ", "regularMarketPrice": 3.2}]
				}],
				"error": null
			}
		}`)
	})

	res, err := client.Screener(context.Background(), provider.ScreenerOptions{ScrID: "day_gainers", Count: 2})
	if err != nil {
		t.Fatalf("Screener() returned unexpected error: %v", err)
	}
	if res.ID != "day_gainers" || res.Total != 120 || len(res.Quotes) != 2 {
		t.Errorf("Screener() = %+v", res)
	}
}

func TestClient_FinanceEnvelopeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"finance": {"result": null, "error": {"code": "Bad Request", "description": "Invalid region"}}}`)
	})

	_, err := client.TrendingSymbols(context.Background(), "XX", provider.TrendingOptions{})
	assertFetchErrorType(t, err, provider.ErrorTypeClient)
}
