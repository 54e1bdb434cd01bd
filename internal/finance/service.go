// Package finance implements the gateway operations shared by the HTTP and MCP adapters.
//
// Every operation validates its options, builds the parameter tuple that
// identifies the result, and hands the per-key provider call to the resolver.
package finance

import (
	"context"
	"strconv"
	"strings"
	"time"

	"financegateway/internal/fanout"
	"financegateway/internal/provider"
	"financegateway/internal/resolver"
)

// Cache kinds, used as the first segment of every cache key.
const (
	KindQuote           = "quote"
	KindHistory         = "history"
	KindSearch          = "search"
	KindTrending        = "trending"
	KindRecommendations = "recommendations"
	KindInsights        = "insights"
	KindScreener        = "screener"
)

// Service exposes the gateway operations.
type Service struct {
	provider provider.Provider
	resolver *resolver.Resolver
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used to compute history windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service that fetches from p through r.
func NewService(p provider.Provider, r *resolver.Resolver, opts ...Option) *Service {
	s := &Service{
		provider: p,
		resolver: r,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HistoryParams selects the history window.
type HistoryParams struct {
	Period   string
	Interval string
}

// SearchParams bounds a search.
type SearchParams struct {
	QuotesCount int
	NewsCount   int
}

func requireKeys(keys []string, what string) error {
	if len(keys) == 0 {
		return invalid("at least one %s is required", what)
	}
	if len(keys) > MaxKeys {
		return invalid("too many %ss: %d (max %d)", what, len(keys), MaxKeys)
	}
	return nil
}

// Quotes returns a quote per symbol.
func (s *Service) Quotes(ctx context.Context, symbols []string) (map[string]fanout.Outcome[provider.Quote], error) {
	if err := requireKeys(symbols, "symbol"); err != nil {
		return nil, err
	}

	req := resolver.Request{Kind: KindQuote, Keys: symbols}
	return resolver.ResolveKeyed(ctx, s.resolver, req, func(ctx context.Context, symbol string) (provider.Quote, error) {
		return s.provider.Quote(ctx, symbol)
	}), nil
}

// History returns price history per symbol, aligned with symbols.
func (s *Service) History(ctx context.Context, symbols []string, params HistoryParams) ([]fanout.Outcome[provider.Chart], error) {
	if err := requireKeys(symbols, "symbol"); err != nil {
		return nil, err
	}
	period, err := ValidatePeriod(params.Period)
	if err != nil {
		return nil, err
	}
	interval, err := ValidateInterval(params.Interval)
	if err != nil {
		return nil, err
	}
	period1, period2, err := PeriodRange(period, s.now())
	if err != nil {
		return nil, err
	}

	opts := provider.ChartOptions{Period1: period1, Period2: period2, Interval: interval}
	req := resolver.Request{Kind: KindHistory, Keys: symbols, Options: []string{period, interval}}
	return resolver.ResolveOrdered(ctx, s.resolver, req, func(ctx context.Context, symbol string) (provider.Chart, error) {
		return s.provider.Chart(ctx, symbol, opts)
	}), nil
}

// Search looks up symbols and news for query.
func (s *Service) Search(ctx context.Context, query string, params SearchParams) (provider.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return provider.SearchResult{}, invalid("search query is required")
	}

	opts := provider.SearchOptions{
		QuotesCount: ClampCount(params.QuotesCount, DefaultSearchQuotes, MaxSearchQuotes),
		NewsCount:   ClampCount(params.NewsCount, DefaultSearchNews, MaxSearchNews),
	}
	req := resolver.Request{
		Kind:    KindSearch,
		Keys:    []string{query},
		Options: []string{strconv.Itoa(opts.QuotesCount), strconv.Itoa(opts.NewsCount)},
	}
	return resolver.ResolveValue(ctx, s.resolver, req, func(ctx context.Context) (provider.SearchResult, error) {
		return s.provider.Search(ctx, query, opts)
	})
}

// Trending returns trending symbols per region.
func (s *Service) Trending(ctx context.Context, regions []string, count int) (map[string]fanout.Outcome[provider.Trending], error) {
	if err := requireKeys(regions, "region"); err != nil {
		return nil, err
	}

	opts := provider.TrendingOptions{Count: ClampCount(count, DefaultTrendingCount, MaxTrendingCount)}
	req := resolver.Request{Kind: KindTrending, Keys: regions, Options: []string{strconv.Itoa(opts.Count)}}
	return resolver.ResolveKeyed(ctx, s.resolver, req, func(ctx context.Context, region string) (provider.Trending, error) {
		return s.provider.TrendingSymbols(ctx, region, opts)
	}), nil
}

// Recommendations returns similar symbols per symbol.
func (s *Service) Recommendations(ctx context.Context, symbols []string) (map[string]fanout.Outcome[provider.Recommendations], error) {
	if err := requireKeys(symbols, "symbol"); err != nil {
		return nil, err
	}

	req := resolver.Request{Kind: KindRecommendations, Keys: symbols}
	return resolver.ResolveKeyed(ctx, s.resolver, req, func(ctx context.Context, symbol string) (provider.Recommendations, error) {
		return s.provider.RecommendationsBySymbol(ctx, symbol)
	}), nil
}

// Insights returns research insights per symbol.
func (s *Service) Insights(ctx context.Context, symbols []string) (map[string]fanout.Outcome[provider.Insights], error) {
	if err := requireKeys(symbols, "symbol"); err != nil {
		return nil, err
	}

	req := resolver.Request{Kind: KindInsights, Keys: symbols}
	return resolver.ResolveKeyed(ctx, s.resolver, req, func(ctx context.Context, symbol string) (provider.Insights, error) {
		return s.provider.Insights(ctx, symbol)
	}), nil
}

// Screener runs a predefined screener.
func (s *Service) Screener(ctx context.Context, scrType string, count int) (provider.ScreenerResult, error) {
	scrID, err := ValidateScreener(scrType)
	if err != nil {
		return provider.ScreenerResult{}, err
	}

	opts := provider.ScreenerOptions{ScrID: scrID, Count: ClampCount(count, DefaultScreenerCount, MaxScreenerCount)}
	req := resolver.Request{Kind: KindScreener, Keys: []string{scrID}, Options: []string{strconv.Itoa(opts.Count)}}
	return resolver.ResolveValue(ctx, s.resolver, req, func(ctx context.Context) (provider.ScreenerResult, error) {
		return s.provider.Screener(ctx, opts)
	})
}
