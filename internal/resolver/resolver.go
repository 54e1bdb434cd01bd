// Package resolver binds the fan-out aggregator to a cache store.
//
// Lookups are read-through and write-through: a hit returns the stored
// aggregate without touching the provider, a miss fans out and stores the
// settled result. No lock spans the check and the populate, so concurrent
// identical requests may both fan out.
package resolver

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"financegateway/internal/cache"
	"financegateway/internal/fanout"
	"financegateway/internal/metrics"
)

// Resolver serves aggregates from the cache when possible and from the
// aggregator otherwise.
type Resolver struct {
	store   cache.Store
	enabled bool
	ttl     time.Duration
	agg     *fanout.Aggregator
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCacheEnabled toggles caching. When disabled the store is never read or written.
func WithCacheEnabled(enabled bool) Option {
	return func(r *Resolver) {
		r.enabled = enabled
	}
}

// WithDefaultTTL sets the TTL for stored aggregates.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// New creates a Resolver. Caching is enabled when store is non-nil unless
// WithCacheEnabled(false) is passed.
func New(store cache.Store, agg *fanout.Aggregator, opts ...Option) *Resolver {
	r := &Resolver{
		store:   store,
		enabled: store != nil,
		ttl:     cache.DefaultTTL,
		agg:     agg,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.enabled = false
	}
	return r
}

// CacheEnabled reports whether lookups go through the store.
func (r *Resolver) CacheEnabled() bool {
	return r.enabled
}

// TTL returns the default TTL for stored aggregates.
func (r *Resolver) TTL() time.Duration {
	return r.ttl
}

// Request is the parameter tuple of one aggregated lookup.
type Request struct {
	Kind    string
	Keys    []string
	Options []string
}

// CacheKey returns the cache key for the request.
func (q Request) CacheKey() string {
	return Key(q.Kind, q.Keys, q.Options...)
}

// Key derives the cache key "kind:K1,K2:opt1:opt2". Key order is preserved,
// so the same keys in a different order are a different entry.
func Key(kind string, keys []string, opts ...string) string {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte(':')
	b.WriteString(strings.Join(keys, ","))
	for _, opt := range opts {
		b.WriteByte(':')
		b.WriteString(opt)
	}
	return b.String()
}

// CallOption adjusts a single lookup.
type CallOption func(*call)

type call struct {
	ttl time.Duration
}

// WithTTL overrides the resolver's default TTL for one lookup.
func WithTTL(ttl time.Duration) CallOption {
	return func(c *call) {
		c.ttl = ttl
	}
}

func (r *Resolver) callTTL(opts []CallOption) time.Duration {
	c := call{ttl: r.ttl}
	for _, opt := range opts {
		opt(&c)
	}
	if c.ttl <= 0 {
		return r.ttl
	}
	return c.ttl
}

// ResolveKeyed returns the keyed aggregate for req, fanning out over req.Keys on a miss.
func ResolveKeyed[V any](ctx context.Context, r *Resolver, req Request, op fanout.Op[V], opts ...CallOption) map[string]fanout.Outcome[V] {
	return resolve(ctx, r, req.Kind, req.CacheKey(), r.callTTL(opts), func(ctx context.Context) (map[string]fanout.Outcome[V], bool) {
		result := fanout.Keyed(ctx, r.agg, req.Keys, op)
		_, failed := fanout.CountKeyed(result)
		r.metrics.RecordFanout(req.Kind, len(req.Keys), failed)
		return result, true
	})
}

// ResolveOrdered returns the ordered aggregate for req, aligned with req.Keys.
func ResolveOrdered[V any](ctx context.Context, r *Resolver, req Request, op fanout.Op[V], opts ...CallOption) []fanout.Outcome[V] {
	return resolve(ctx, r, req.Kind, req.CacheKey(), r.callTTL(opts), func(ctx context.Context) ([]fanout.Outcome[V], bool) {
		result := fanout.Ordered(ctx, r.agg, req.Keys, op)
		_, failed := fanout.CountOrdered(result)
		r.metrics.RecordFanout(req.Kind, len(req.Keys), failed)
		return result, true
	})
}

// ResolveOne is the single-key variant: the outcome for key, cached like an aggregate.
func ResolveOne[V any](ctx context.Context, r *Resolver, kind, key string, options []string, op fanout.Op[V], opts ...CallOption) fanout.Outcome[V] {
	req := Request{Kind: kind, Keys: []string{key}, Options: options}
	outcomes := ResolveOrdered(ctx, r, req, op, opts...)
	return outcomes[0]
}

// ResolveValue fetches a single value without aggregation. Only successful
// values are cached; an error is returned to the caller and not stored.
func ResolveValue[V any](ctx context.Context, r *Resolver, req Request, fetch func(ctx context.Context) (V, error), opts ...CallOption) (V, error) {
	var fetchErr error
	value := resolve(ctx, r, req.Kind, req.CacheKey(), r.callTTL(opts), func(ctx context.Context) (V, bool) {
		v, err := fetch(ctx)
		if err != nil {
			fetchErr = err
			return v, false
		}
		return v, true
	})
	return value, fetchErr
}

// resolve implements the read-through, write-through sequence. fetch reports
// whether its result may be stored. A result produced after ctx was canceled
// or expired reflects the caller, not the upstream, and is never stored.
func resolve[T any](ctx context.Context, r *Resolver, kind, key string, ttl time.Duration, fetch func(context.Context) (T, bool)) T {
	if !r.enabled {
		v, _ := fetch(ctx)
		return v
	}

	if v, ok := lookup[T](ctx, r, kind, key); ok {
		return v
	}

	v, cacheable := fetch(ctx)
	if !cacheable {
		return v
	}
	if err := ctx.Err(); err != nil {
		r.logger.Debug("caller context done, result not cached", "key", key, "error", err)
		return v
	}
	store(ctx, r, key, v, ttl)
	return v
}

func lookup[T any](ctx context.Context, r *Resolver, kind, key string) (T, bool) {
	var v T

	data, hit, err := r.store.Get(ctx, key)
	if err != nil {
		r.metrics.RecordCacheError("get")
		r.logger.Warn("cache read failed, serving uncached", "key", key, "error", err)
		return v, false
	}
	if !hit {
		r.metrics.RecordCacheMiss(kind)
		return v, false
	}

	if err := json.Unmarshal(data, &v); err != nil {
		r.metrics.RecordCacheError("decode")
		r.metrics.RecordCacheMiss(kind)
		r.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return v, false
	}

	r.metrics.RecordCacheHit(kind)
	r.logger.Debug("cache hit", "key", key)
	return v, true
}

func store[T any](ctx context.Context, r *Resolver, key string, v T, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.metrics.RecordCacheError("encode")
		r.logger.Warn("cannot encode result for cache", "key", key, "error", err)
		return
	}
	if err := r.store.Set(ctx, key, data, ttl); err != nil {
		r.metrics.RecordCacheError("set")
		r.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
