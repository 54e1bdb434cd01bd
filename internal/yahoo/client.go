// Package yahoo implements provider.Provider against the Yahoo Finance JSON API.
package yahoo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"resty.dev/v3"

	"financegateway/internal/provider"
)

// apiError is the error envelope Yahoo embeds in most responses.
type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// QuoteResponse represents the /v7/finance/quote response
type QuoteResponse struct {
	QuoteResponse struct {
		Result []provider.Quote `json:"result"`
		Error  *apiError        `json:"error"`
	} `json:"quoteResponse"`
}

// ChartResponse represents the /v8/finance/chart response
type ChartResponse struct {
	Chart struct {
		Result []struct {
			Meta       provider.ChartMeta `json:"meta"`
			Timestamp  []int64            `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

// financeEnvelope represents the {"finance": {"result": ..., "error": ...}} responses
type financeEnvelope[T any] struct {
	Finance struct {
		Result T         `json:"result"`
		Error  *apiError `json:"error"`
	} `json:"finance"`
}

// screenerResult is the raw screener payload
type screenerResult struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Total       int              `json:"total"`
	Quotes      []provider.Quote `json:"quotes"`
}

// Client fetches market data from Yahoo Finance
type Client struct {
	client *resty.Client
}

var _ provider.Provider = (*Client)(nil)

// NewClient creates a Yahoo Finance client using the given HTTP settings.
func NewClient(cfg provider.HTTPClientConfig) *Client {
	return &Client{client: provider.NewHTTPClient(cfg)}
}

// get performs a GET and decodes the body into result, classifying failures.
func (c *Client) get(ctx context.Context, path string, pathParams, query map[string]string, result any) error {
	req := c.client.R().
		SetContext(ctx).
		SetResult(result)
	if len(pathParams) > 0 {
		req.SetPathParams(pathParams)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return provider.ClassifyTransportError(err)
	}
	if !resp.IsSuccess() {
		return provider.ClassifyHTTPError(resp.StatusCode())
	}
	return nil
}

// Quote retrieves a real-time quote
func (c *Client) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
	var result QuoteResponse

	err := c.get(ctx, "/v7/finance/quote", nil, map[string]string{"symbols": symbol}, &result)
	if err != nil {
		return provider.Quote{}, notFoundAs(err, fmt.Sprintf("Quote not found for symbol: %s", symbol))
	}
	if e := result.QuoteResponse.Error; e != nil {
		return provider.Quote{}, provider.NewClientError(0, e.Description)
	}
	if len(result.QuoteResponse.Result) == 0 {
		return provider.Quote{}, provider.NewNotFoundError(fmt.Sprintf("Quote not found for symbol: %s", symbol))
	}

	return result.QuoteResponse.Result[0], nil
}

// Chart retrieves price history between opts.Period1 and opts.Period2
func (c *Client) Chart(ctx context.Context, symbol string, opts provider.ChartOptions) (provider.Chart, error) {
	var result ChartResponse

	query := map[string]string{
		"period1":  strconv.FormatInt(opts.Period1.Unix(), 10),
		"period2":  strconv.FormatInt(opts.Period2.Unix(), 10),
		"interval": opts.Interval,
		"events":   "div|split",
	}
	err := c.get(ctx, "/v8/finance/chart/{symbol}", map[string]string{"symbol": symbol}, query, &result)
	if err != nil {
		return provider.Chart{}, notFoundAs(err, fmt.Sprintf("No data found for symbol: %s", symbol))
	}
	if e := result.Chart.Error; e != nil {
		return provider.Chart{}, provider.NewNotFoundError(e.Description)
	}
	if len(result.Chart.Result) == 0 {
		return provider.Chart{}, provider.NewNotFoundError(fmt.Sprintf("No data found for symbol: %s", symbol))
	}

	raw := result.Chart.Result[0]
	chart := provider.Chart{Meta: raw.Meta, Quotes: make([]provider.Candle, 0, len(raw.Timestamp))}
	if len(raw.Indicators.Quote) == 0 {
		return chart, nil
	}
	q := raw.Indicators.Quote[0]
	var adj []*float64
	if len(raw.Indicators.AdjClose) > 0 {
		adj = raw.Indicators.AdjClose[0].AdjClose
	}

	for i, ts := range raw.Timestamp {
		chart.Quotes = append(chart.Quotes, provider.Candle{
			Date:     time.Unix(ts, 0).UTC(),
			Open:     at(q.Open, i),
			High:     at(q.High, i),
			Low:      at(q.Low, i),
			Close:    at(q.Close, i),
			AdjClose: at(adj, i),
			Volume:   at(q.Volume, i),
		})
	}

	return chart, nil
}

// Search looks up symbols and news matching query
func (c *Client) Search(ctx context.Context, query string, opts provider.SearchOptions) (provider.SearchResult, error) {
	var result provider.SearchResult

	err := c.get(ctx, "/v1/finance/search", nil, map[string]string{
		"q":           query,
		"quotesCount": strconv.Itoa(opts.QuotesCount),
		"newsCount":   strconv.Itoa(opts.NewsCount),
	}, &result)
	if err != nil {
		return provider.SearchResult{}, err
	}
	if result.Quotes == nil {
		result.Quotes = []provider.SearchQuote{}
	}
	if result.News == nil {
		result.News = []provider.NewsItem{}
	}

	return result, nil
}

// TrendingSymbols retrieves trending symbols for a region
func (c *Client) TrendingSymbols(ctx context.Context, region string, opts provider.TrendingOptions) (provider.Trending, error) {
	var result financeEnvelope[[]provider.Trending]

	query := map[string]string{}
	if opts.Count > 0 {
		query["count"] = strconv.Itoa(opts.Count)
	}
	err := c.get(ctx, "/v1/finance/trending/{region}", map[string]string{"region": region}, query, &result)
	if err != nil {
		return provider.Trending{}, notFoundAs(err, fmt.Sprintf("No trending symbols for region: %s", region))
	}
	if e := result.Finance.Error; e != nil {
		return provider.Trending{}, provider.NewClientError(0, e.Description)
	}
	if len(result.Finance.Result) == 0 {
		return provider.Trending{}, provider.NewNotFoundError(fmt.Sprintf("No trending symbols for region: %s", region))
	}

	trending := result.Finance.Result[0]
	if opts.Count > 0 && len(trending.Quotes) > opts.Count {
		trending.Quotes = trending.Quotes[:opts.Count]
	}
	trending.Count = len(trending.Quotes)
	return trending, nil
}

// RecommendationsBySymbol retrieves symbols similar to symbol
func (c *Client) RecommendationsBySymbol(ctx context.Context, symbol string) (provider.Recommendations, error) {
	var result financeEnvelope[[]provider.Recommendations]

	err := c.get(ctx, "/v6/finance/recommendationsbysymbol/{symbol}", map[string]string{"symbol": symbol}, nil, &result)
	if err != nil {
		return provider.Recommendations{}, notFoundAs(err, fmt.Sprintf("No recommendations for symbol: %s", symbol))
	}
	if e := result.Finance.Error; e != nil {
		return provider.Recommendations{}, provider.NewClientError(0, e.Description)
	}
	if len(result.Finance.Result) == 0 {
		return provider.Recommendations{}, provider.NewNotFoundError(fmt.Sprintf("No recommendations for symbol: %s", symbol))
	}

	return result.Finance.Result[0], nil
}

// Insights retrieves research insights for symbol
func (c *Client) Insights(ctx context.Context, symbol string) (provider.Insights, error) {
	var result financeEnvelope[*provider.Insights]

	err := c.get(ctx, "/ws/insights/v2/finance/insights", nil, map[string]string{"symbol": symbol}, &result)
	if err != nil {
		return provider.Insights{}, notFoundAs(err, fmt.Sprintf("No insights for symbol: %s", symbol))
	}
	if e := result.Finance.Error; e != nil {
		return provider.Insights{}, provider.NewClientError(0, e.Description)
	}
	if result.Finance.Result == nil {
		return provider.Insights{}, provider.NewNotFoundError(fmt.Sprintf("No insights for symbol: %s", symbol))
	}

	return *result.Finance.Result, nil
}

// Screener runs a predefined screener
func (c *Client) Screener(ctx context.Context, opts provider.ScreenerOptions) (provider.ScreenerResult, error) {
	var result financeEnvelope[[]screenerResult]

	query := map[string]string{"scrIds": opts.ScrID}
	if opts.Count > 0 {
		query["count"] = strconv.Itoa(opts.Count)
	}
	err := c.get(ctx, "/v1/finance/screener/predefined/saved", nil, query, &result)
	if err != nil {
		return provider.ScreenerResult{}, notFoundAs(err, fmt.Sprintf("Unknown screener: %s", opts.ScrID))
	}
	if e := result.Finance.Error; e != nil {
		return provider.ScreenerResult{}, provider.NewClientError(0, e.Description)
	}
	if len(result.Finance.Result) == 0 {
		return provider.ScreenerResult{}, provider.NewNotFoundError(fmt.Sprintf("Unknown screener: %s", opts.ScrID))
	}

	raw := result.Finance.Result[0]
	out := provider.ScreenerResult{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Total:       raw.Total,
		Quotes:      raw.Quotes,
	}
	if out.Quotes == nil {
		out.Quotes = []provider.Quote{}
	}
	return out, nil
}

// notFoundAs replaces the generic 404 message with a key-specific one.
func notFoundAs(err error, message string) error {
	if provider.IsNotFound(err) {
		e := provider.NewNotFoundError(message)
		e.Cause = err
		return e
	}
	return err
}

// at returns s[i] or nil when the series is short.
func at[T any](s []*T, i int) *T {
	if i < len(s) {
		return s[i]
	}
	return nil
}
