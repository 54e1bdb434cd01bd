// Package fanout runs one operation per key concurrently and joins on all of them.
//
// A failing key never aborts its siblings: every key settles into an Outcome,
// and the join waits for all of them.
package fanout

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
)

// Op fetches the value for a single key.
type Op[V any] func(ctx context.Context, key string) (V, error)

// Aggregator holds fan-out policy. It keeps no state between calls.
type Aggregator struct {
	maxConcurrency int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMaxConcurrency caps the number of in-flight operations per fan-out.
// Zero or negative means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxConcurrency = n
		}
	}
}

// New creates an Aggregator. With no options every key is launched at once.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxConcurrency returns the configured cap, 0 when unbounded.
func (a *Aggregator) MaxConcurrency() int {
	if a == nil {
		return 0
	}
	return a.maxConcurrency
}

// Ordered runs op for every key and returns the outcomes aligned with keys,
// whatever order the calls complete in. A nil Aggregator is unbounded.
func Ordered[V any](ctx context.Context, a *Aggregator, keys []string, op Op[V]) []Outcome[V] {
	if op == nil {
		panic("fanout: nil op")
	}

	outcomes := make([]Outcome[V], len(keys))
	if len(keys) == 0 {
		return outcomes
	}

	p := pool.New()
	if n := a.MaxConcurrency(); n > 0 {
		p = p.WithMaxGoroutines(n)
	}

	// Each goroutine owns exactly one slot of outcomes.
	for i, key := range keys {
		p.Go(func() {
			outcomes[i] = run(ctx, key, op)
		})
	}
	p.Wait()

	return outcomes
}

// Keyed runs op for every key and returns the outcomes by key. When keys
// repeat, the outcome of the last occurrence in keys wins.
func Keyed[V any](ctx context.Context, a *Aggregator, keys []string, op Op[V]) map[string]Outcome[V] {
	ordered := Ordered(ctx, a, keys, op)

	result := make(map[string]Outcome[V], len(keys))
	for i, key := range keys {
		result[key] = ordered[i]
	}
	return result
}

// run executes op for one key and converts errors and panics into an Err outcome.
func run[V any](ctx context.Context, key string, op Op[V]) (o Outcome[V]) {
	defer func() {
		if r := recover(); r != nil {
			o = Err[V](fmt.Sprintf("panic fetching %s: %v", key, r))
		}
	}()

	value, err := op(ctx, key)
	if err != nil {
		return Err[V](err.Error())
	}
	return Ok(value)
}
