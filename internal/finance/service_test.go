package finance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financegateway/internal/cache"
	"financegateway/internal/fanout"
	"financegateway/internal/finance"
	"financegateway/internal/provider"
	"financegateway/internal/resolver"
	"financegateway/internal/testutil"
)

var fixedNow = time.Date(2024, 6, 15, 16, 0, 0, 0, time.UTC)

func newService(t *testing.T, mock *testutil.MockProvider) (*finance.Service, cache.Store) {
	t.Helper()
	store := cache.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	r := resolver.New(store, fanout.New())
	return finance.NewService(mock, r, finance.WithClock(func() time.Time { return fixedNow })), store
}

func TestService_Quotes(t *testing.T) {
	mock := testutil.NewQuoteProvider(map[string]float64{"AAPL": 178.23, "GOOGL": 141.8})
	svc, store := newService(t, mock)
	ctx := context.Background()

	result, err := svc.Quotes(ctx, []string{"AAPL", "GOOGL", "BADSYM"})
	require.NoError(t, err)

	require.Len(t, result, 3)
	assert.True(t, result["AAPL"].IsOk())
	assert.True(t, result["GOOGL"].IsOk())
	assert.Equal(t, "not_found error: Not found", result["BADSYM"].ErrMessage())

	summary := finance.SummarizeKeyed(result)
	assert.Equal(t, finance.Summary{Total: 3, OK: 2, Failed: 1}, summary)
	assert.False(t, summary.AllFailed())

	_, hit, err := store.Get(ctx, "quote:AAPL,GOOGL,BADSYM")
	require.NoError(t, err)
	assert.True(t, hit)

	_, err = svc.Quotes(ctx, []string{"AAPL", "GOOGL", "BADSYM"})
	require.NoError(t, err)
	assert.Equal(t, 3, mock.Calls("quote"))
}

func TestService_Quotes_DisconnectedCallerDoesNotPoisonCache(t *testing.T) {
	mock := &testutil.MockProvider{
		QuoteFunc: func(ctx context.Context, symbol string) (provider.Quote, error) {
			if err := ctx.Err(); err != nil {
				return provider.Quote{}, provider.ClassifyTransportError(err)
			}
			return provider.Quote{Symbol: symbol, RegularMarketPrice: 178.23}, nil
		},
	}
	svc, store := newService(t, mock)

	gone, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := svc.Quotes(gone, []string{"AAPL"})
	require.NoError(t, err)
	assert.Contains(t, result["AAPL"].ErrMessage(), "canceled")

	_, hit, err := store.Get(context.Background(), "quote:AAPL")
	require.NoError(t, err)
	assert.False(t, hit)

	result, err = svc.Quotes(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.True(t, result["AAPL"].IsOk())
	assert.Equal(t, 2, mock.Calls("quote"))
}

func TestService_Quotes_NoSymbols(t *testing.T) {
	mock := &testutil.MockProvider{}
	svc, _ := newService(t, mock)

	_, err := svc.Quotes(context.Background(), nil)
	assert.ErrorIs(t, err, finance.ErrInvalidInput)
	assert.Zero(t, mock.TotalCalls())
}

func TestService_History(t *testing.T) {
	var mu sync.Mutex
	var seen []provider.ChartOptions
	mock := &testutil.MockProvider{
		ChartFunc: func(ctx context.Context, symbol string, opts provider.ChartOptions) (provider.Chart, error) {
			mu.Lock()
			seen = append(seen, opts)
			mu.Unlock()
			if symbol == "A" {
				time.Sleep(20 * time.Millisecond)
			}
			return provider.Chart{Meta: provider.ChartMeta{Symbol: symbol}}, nil
		},
	}
	svc, store := newService(t, mock)
	ctx := context.Background()

	result, err := svc.History(ctx, []string{"A", "B"}, finance.HistoryParams{Period: "5d", Interval: "1h"})
	require.NoError(t, err)

	require.Len(t, result, 2)
	a, _ := result[0].Value()
	b, _ := result[1].Value()
	assert.Equal(t, "A", a.Meta.Symbol)
	assert.Equal(t, "B", b.Meta.Symbol)

	require.Len(t, seen, 2)
	assert.Equal(t, "1h", seen[0].Interval)
	assert.True(t, seen[0].Period2.Equal(fixedNow))
	assert.True(t, seen[0].Period1.Equal(fixedNow.AddDate(0, 0, -5)))

	_, hit, err := store.Get(ctx, "history:A,B:5d:1h")
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestService_History_Defaults(t *testing.T) {
	mock := &testutil.MockProvider{
		ChartFunc: func(ctx context.Context, symbol string, opts provider.ChartOptions) (provider.Chart, error) {
			return provider.Chart{}, nil
		},
	}
	svc, store := newService(t, mock)
	ctx := context.Background()

	_, err := svc.History(ctx, []string{"AAPL"}, finance.HistoryParams{})
	require.NoError(t, err)

	_, hit, err := store.Get(ctx, "history:AAPL:1mo:1d")
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestService_History_InvalidParams(t *testing.T) {
	mock := &testutil.MockProvider{}
	svc, _ := newService(t, mock)
	ctx := context.Background()

	_, err := svc.History(ctx, []string{"AAPL"}, finance.HistoryParams{Period: "3w"})
	assert.ErrorIs(t, err, finance.ErrInvalidInput)

	_, err = svc.History(ctx, []string{"AAPL"}, finance.HistoryParams{Interval: "7m"})
	assert.ErrorIs(t, err, finance.ErrInvalidInput)

	assert.Zero(t, mock.TotalCalls())
}

func TestService_Search(t *testing.T) {
	var got provider.SearchOptions
	mock := &testutil.MockProvider{
		SearchFunc: func(ctx context.Context, query string, opts provider.SearchOptions) (provider.SearchResult, error) {
			got = opts
			return provider.SearchResult{Quotes: []provider.SearchQuote{{Symbol: "AAPL"}}}, nil
		},
	}
	svc, store := newService(t, mock)
	ctx := context.Background()

	res, err := svc.Search(ctx, "  apple ", finance.SearchParams{QuotesCount: 100})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", res.Quotes[0].Symbol)
	assert.Equal(t, provider.SearchOptions{QuotesCount: finance.MaxSearchQuotes, NewsCount: finance.DefaultSearchNews}, got)

	_, hit, err := store.Get(ctx, "search:apple:25:4")
	require.NoError(t, err)
	assert.True(t, hit)

	_, err = svc.Search(ctx, "   ", finance.SearchParams{})
	assert.ErrorIs(t, err, finance.ErrInvalidInput)
}

func TestService_Search_UpstreamError(t *testing.T) {
	mock := &testutil.MockProvider{
		SearchFunc: func(ctx context.Context, query string, opts provider.SearchOptions) (provider.SearchResult, error) {
			return provider.SearchResult{}, provider.NewServerError(503)
		},
	}
	svc, _ := newService(t, mock)

	_, err := svc.Search(context.Background(), "apple", finance.SearchParams{})
	assert.True(t, provider.IsRetryable(err))
}

func TestService_Trending(t *testing.T) {
	mock := &testutil.MockProvider{
		TrendingFunc: func(ctx context.Context, region string, opts provider.TrendingOptions) (provider.Trending, error) {
			if region == "XX" {
				return provider.Trending{}, provider.NewNotFoundError("No trending symbols for region: XX")
			}
			return provider.Trending{Count: opts.Count, Quotes: make([]provider.TrendingSymbol, opts.Count)}, nil
		},
	}
	svc, _ := newService(t, mock)

	result, err := svc.Trending(context.Background(), []string{"US", "XX"}, 0)
	require.NoError(t, err)

	us, ok := result["US"].Value()
	require.True(t, ok)
	assert.Equal(t, finance.DefaultTrendingCount, us.Count)
	assert.False(t, result["XX"].IsOk())
}

func TestService_RecommendationsAndInsights(t *testing.T) {
	mock := &testutil.MockProvider{
		RecommendationsFunc: func(ctx context.Context, symbol string) (provider.Recommendations, error) {
			return provider.Recommendations{Symbol: symbol}, nil
		},
		InsightsFunc: func(ctx context.Context, symbol string) (provider.Insights, error) {
			return provider.Insights{Symbol: symbol}, nil
		},
	}
	svc, _ := newService(t, mock)
	ctx := context.Background()

	recs, err := svc.Recommendations(ctx, []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	insights, err := svc.Insights(ctx, []string{"AAPL"})
	require.NoError(t, err)
	v, ok := insights["AAPL"].Value()
	require.True(t, ok)
	assert.Equal(t, "AAPL", v.Symbol)

	assert.Equal(t, 2, mock.Calls("recommendations"))
	assert.Equal(t, 1, mock.Calls("insights"))
}

func TestService_Screener(t *testing.T) {
	mock := &testutil.MockProvider{
		ScreenerFunc: func(ctx context.Context, opts provider.ScreenerOptions) (provider.ScreenerResult, error) {
			return provider.ScreenerResult{ID: opts.ScrID, Total: opts.Count}, nil
		},
	}
	svc, _ := newService(t, mock)
	ctx := context.Background()

	res, err := svc.Screener(ctx, "most_actives", 500)
	require.NoError(t, err)
	assert.Equal(t, "most_actives", res.ID)
	assert.Equal(t, finance.MaxScreenerCount, res.Total)

	_, err = svc.Screener(ctx, "most_actives", 500)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Calls("screener"))

	_, err = svc.Screener(ctx, "unknown", 0)
	assert.ErrorIs(t, err, finance.ErrInvalidInput)
}

func TestSummary_AllFailed(t *testing.T) {
	failed := []fanout.Outcome[int]{fanout.Err[int]("a"), fanout.Err[int]("b")}
	assert.True(t, finance.SummarizeOrdered(failed).AllFailed())

	mixed := []fanout.Outcome[int]{fanout.Ok(1), fanout.Err[int]("b")}
	assert.False(t, finance.SummarizeOrdered(mixed).AllFailed())

	assert.False(t, finance.Summary{}.AllFailed())
}
