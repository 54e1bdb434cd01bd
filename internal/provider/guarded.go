package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"financegateway/internal/metrics"
	"financegateway/internal/ratelimit"
)

// GuardConfig configures a Guarded provider.
type GuardConfig struct {
	Name             string
	API              ratelimit.API
	Timeout          time.Duration // per call; 0 disables
	FailureThreshold uint32        // consecutive retryable failures before opening
	Interval         time.Duration // closed-state counter reset period
	OpenTimeout      time.Duration // time spent open before a half-open probe
}

// Guarded wraps a Provider with a per-call timeout, a rate limiter and a circuit breaker.
type Guarded struct {
	next    Provider
	api     ratelimit.API
	timeout time.Duration
	limiter *ratelimit.Limiter
	breaker *gobreaker.CircuitBreaker[any]
	metrics *metrics.Metrics
	logger  *slog.Logger
}

var _ Provider = (*Guarded)(nil)

// NewGuarded decorates next. limiter, m and logger may be nil.
func NewGuarded(next Provider, cfg GuardConfig, limiter *ratelimit.Limiter, m *metrics.Metrics, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = string(cfg.API)
	}

	threshold := cfg.FailureThreshold
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Only upstream trouble trips the breaker; a bad symbol or a caller
		// hanging up is not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err) || IsCanceled(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("provider circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &Guarded{
		next:    next,
		api:     cfg.API,
		timeout: cfg.Timeout,
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		metrics: m,
		logger:  logger,
	}
}

// State returns the circuit breaker state.
func (g *Guarded) State() gobreaker.State {
	return g.breaker.State()
}

// guard runs fn under the timeout, limiter and breaker.
func guard[T any](g *Guarded, ctx context.Context, operation string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	start := time.Now()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := g.limiter.Wait(ctx, g.api); err != nil {
		var fe *FetchError
		if errors.Is(ctx.Err(), context.Canceled) {
			fe = NewCanceledError(ctx.Err())
		} else {
			fe = NewTimeoutError(err)
		}
		fe.Message = "rate limiter wait aborted"
		g.metrics.RecordProviderCall(operation, fe, time.Since(start))
		return zero, fe
	}

	res, err := g.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = NewCircuitOpenError(err)
	}
	g.metrics.RecordProviderCall(operation, err, time.Since(start))
	if err != nil {
		g.logger.Debug("provider call failed", "operation", operation, "error", err)
		return zero, err
	}

	v, _ := res.(T)
	return v, nil
}

// Quote implements Provider.
func (g *Guarded) Quote(ctx context.Context, symbol string) (Quote, error) {
	return guard(g, ctx, "quote", func(ctx context.Context) (Quote, error) {
		return g.next.Quote(ctx, symbol)
	})
}

// Chart implements Provider.
func (g *Guarded) Chart(ctx context.Context, symbol string, opts ChartOptions) (Chart, error) {
	return guard(g, ctx, "chart", func(ctx context.Context) (Chart, error) {
		return g.next.Chart(ctx, symbol, opts)
	})
}

// Search implements Provider.
func (g *Guarded) Search(ctx context.Context, query string, opts SearchOptions) (SearchResult, error) {
	return guard(g, ctx, "search", func(ctx context.Context) (SearchResult, error) {
		return g.next.Search(ctx, query, opts)
	})
}

// TrendingSymbols implements Provider.
func (g *Guarded) TrendingSymbols(ctx context.Context, region string, opts TrendingOptions) (Trending, error) {
	return guard(g, ctx, "trending", func(ctx context.Context) (Trending, error) {
		return g.next.TrendingSymbols(ctx, region, opts)
	})
}

// RecommendationsBySymbol implements Provider.
func (g *Guarded) RecommendationsBySymbol(ctx context.Context, symbol string) (Recommendations, error) {
	return guard(g, ctx, "recommendations", func(ctx context.Context) (Recommendations, error) {
		return g.next.RecommendationsBySymbol(ctx, symbol)
	})
}

// Insights implements Provider.
func (g *Guarded) Insights(ctx context.Context, symbol string) (Insights, error) {
	return guard(g, ctx, "insights", func(ctx context.Context) (Insights, error) {
		return g.next.Insights(ctx, symbol)
	})
}

// Screener implements Provider.
func (g *Guarded) Screener(ctx context.Context, opts ScreenerOptions) (ScreenerResult, error) {
	return guard(g, ctx, "screener", func(ctx context.Context) (ScreenerResult, error) {
		return g.next.Screener(ctx, opts)
	})
}
