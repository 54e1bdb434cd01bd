package testutil

import (
	"context"
	"errors"
	"sync"

	"financegateway/internal/provider"
)

// ErrNotConfigured is returned by MockProvider methods without a func set.
var ErrNotConfigured = errors.New("mock: method not configured")

// MockProvider is a mock implementation of the provider.Provider interface for testing.
// It counts calls per operation.
type MockProvider struct {
	QuoteFunc           func(ctx context.Context, symbol string) (provider.Quote, error)
	ChartFunc           func(ctx context.Context, symbol string, opts provider.ChartOptions) (provider.Chart, error)
	SearchFunc          func(ctx context.Context, query string, opts provider.SearchOptions) (provider.SearchResult, error)
	TrendingFunc        func(ctx context.Context, region string, opts provider.TrendingOptions) (provider.Trending, error)
	RecommendationsFunc func(ctx context.Context, symbol string) (provider.Recommendations, error)
	InsightsFunc        func(ctx context.Context, symbol string) (provider.Insights, error)
	ScreenerFunc        func(ctx context.Context, opts provider.ScreenerOptions) (provider.ScreenerResult, error)

	mu    sync.Mutex
	calls map[string]int
}

var _ provider.Provider = (*MockProvider)(nil)

func (m *MockProvider) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

// Calls returns how many times op was invoked.
func (m *MockProvider) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of invocations across all operations.
func (m *MockProvider) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// Quote implements the Provider interface
func (m *MockProvider) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
	m.record("quote")
	if m.QuoteFunc != nil {
		return m.QuoteFunc(ctx, symbol)
	}
	return provider.Quote{}, ErrNotConfigured
}

// Chart implements the Provider interface
func (m *MockProvider) Chart(ctx context.Context, symbol string, opts provider.ChartOptions) (provider.Chart, error) {
	m.record("chart")
	if m.ChartFunc != nil {
		return m.ChartFunc(ctx, symbol, opts)
	}
	return provider.Chart{}, ErrNotConfigured
}

// Search implements the Provider interface
func (m *MockProvider) Search(ctx context.Context, query string, opts provider.SearchOptions) (provider.SearchResult, error) {
	m.record("search")
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, opts)
	}
	return provider.SearchResult{}, ErrNotConfigured
}

// TrendingSymbols implements the Provider interface
func (m *MockProvider) TrendingSymbols(ctx context.Context, region string, opts provider.TrendingOptions) (provider.Trending, error) {
	m.record("trending")
	if m.TrendingFunc != nil {
		return m.TrendingFunc(ctx, region, opts)
	}
	return provider.Trending{}, ErrNotConfigured
}

// RecommendationsBySymbol implements the Provider interface
func (m *MockProvider) RecommendationsBySymbol(ctx context.Context, symbol string) (provider.Recommendations, error) {
	m.record("recommendations")
	if m.RecommendationsFunc != nil {
		return m.RecommendationsFunc(ctx, symbol)
	}
	return provider.Recommendations{}, ErrNotConfigured
}

// Insights implements the Provider interface
func (m *MockProvider) Insights(ctx context.Context, symbol string) (provider.Insights, error) {
	m.record("insights")
	if m.InsightsFunc != nil {
		return m.InsightsFunc(ctx, symbol)
	}
	return provider.Insights{}, ErrNotConfigured
}

// Screener implements the Provider interface
func (m *MockProvider) Screener(ctx context.Context, opts provider.ScreenerOptions) (provider.ScreenerResult, error) {
	m.record("screener")
	if m.ScreenerFunc != nil {
		return m.ScreenerFunc(ctx, opts)
	}
	return provider.ScreenerResult{}, ErrNotConfigured
}

// NewQuoteProvider creates a mock that prices every symbol in prices and
// fails the rest with a not-found error.
func NewQuoteProvider(prices map[string]float64) *MockProvider {
	return &MockProvider{
		QuoteFunc: func(ctx context.Context, symbol string) (provider.Quote, error) {
			price, ok := prices[symbol]
			if !ok {
				return provider.Quote{}, provider.NewNotFoundError("Not found")
			}
			return provider.Quote{Symbol: symbol, RegularMarketPrice: price}, nil
		},
	}
}
