package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"financegateway/internal/cache"
	"financegateway/internal/config"
	"financegateway/internal/fanout"
	"financegateway/internal/finance"
	"financegateway/internal/metrics"
	"financegateway/internal/provider"
	"financegateway/internal/ratelimit"
	"financegateway/internal/resolver"
	"financegateway/internal/yahoo"
)

// app holds the wired gateway shared by the serve and mcp commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    cache.Store
	service  *finance.Service
}

// newApp wires config -> cache store -> upstream client -> guard -> fan-out -> resolver -> service.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New("financegateway", registry)

	var store cache.Store
	if cfg.Cache.Enabled {
		s, err := cache.NewStore(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		store = s
	}

	limiter := ratelimit.New()
	limiter.Set(ratelimit.APIYahoo, cfg.Provider.RateLimit, cfg.Provider.RateBurst)

	upstream := yahoo.NewClient(provider.HTTPClientConfig{
		BaseURL:   cfg.Provider.BaseURL,
		UserAgent: cfg.Provider.UserAgent,
		Timeout:   cfg.Provider.Timeout,
	})
	guarded := provider.NewGuarded(upstream, provider.GuardConfig{
		Name:             "yahoo",
		API:              ratelimit.APIYahoo,
		Timeout:          cfg.Provider.Timeout,
		FailureThreshold: cfg.Breaker.FailureThreshold,
		Interval:         cfg.Breaker.Interval,
		OpenTimeout:      cfg.Breaker.OpenTimeout,
	}, limiter, m, logger)

	agg := fanout.New(fanout.WithMaxConcurrency(cfg.Provider.MaxConcurrency))
	res := resolver.New(store, agg,
		resolver.WithCacheEnabled(cfg.Cache.Enabled),
		resolver.WithDefaultTTL(cfg.Cache.TTL),
		resolver.WithLogger(logger),
		resolver.WithMetrics(m),
	)

	logger.Info("gateway configured",
		"provider", cfg.Provider.BaseURL,
		"cache_enabled", res.CacheEnabled(),
		"cache_backend", cfg.Cache.Backend,
		"cache_ttl", res.TTL(),
		"max_concurrency", agg.MaxConcurrency())

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  m,
		store:    store,
		service:  finance.NewService(guarded, res),
	}, nil
}

// Close releases the cache store.
func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
