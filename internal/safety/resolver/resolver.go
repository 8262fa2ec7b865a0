// Package resolver looks up safety data for many ingredients at once.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/infra/hazard"
	"github.com/taj0207/IngredientCheck/internal/infra/provider"
	"github.com/taj0207/IngredientCheck/internal/safety/cache"
	"github.com/taj0207/IngredientCheck/internal/safety/metrics"
)

const DefaultMaxConcurrent = 5

// Resolver fans lookups out to a hazard provider through a cache.
type Resolver struct {
	lookup        hazard.Lookup
	cache         cache.Store
	maxConcurrent int
	logger        *slog.Logger
}

// New creates a resolver. A nil store disables caching.
func New(lookup hazard.Lookup, store cache.Store, maxConcurrent int) *Resolver {
	if store == nil {
		store = cache.Nop{}
	}
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Resolver{
		lookup:        lookup,
		cache:         store,
		maxConcurrent: maxConcurrent,
		logger:        slog.Default().With("component", "resolver"),
	}
}

// Resolve returns safety data keyed by the caller's identifiers. Failed and
// not-found identifiers are left out. It waits for every dispatched lookup;
// a cancelled ctx stops dispatching and cancels lookups in flight.
func (r *Resolver) Resolve(ctx context.Context, identifiers []string) map[string]domain.SafetyInfo {
	start := time.Now()

	// Group spellings that normalize to the same key.
	var keys []string
	byKey := make(map[string][]string)
	for _, id := range identifiers {
		k := domain.CacheKey(id)
		if k == "" {
			continue
		}
		if _, seen := byKey[k]; !seen {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], id)
	}

	var mu sync.Mutex
	results := make(map[string]domain.SafetyInfo, len(identifiers))
	merge := func(key string, info *domain.SafetyInfo) {
		mu.Lock()
		defer mu.Unlock()
		for _, id := range byKey[key] {
			results[id] = *info.Clone()
		}
	}

	var misses []string
	for _, k := range keys {
		if info := r.cache.Get(k); info != nil {
			metrics.CacheRequests.WithLabelValues("memory", "hit").Inc()
			merge(k, info)
			continue
		}
		metrics.CacheRequests.WithLabelValues("memory", "miss").Inc()
		misses = append(misses, k)
	}

	var g errgroup.Group
	g.SetLimit(r.maxConcurrent)

	dispatched := 0
	for _, k := range misses {
		if ctx.Err() != nil {
			break
		}
		// Look up the first spelling the caller used.
		id := byKey[k][0]
		dispatched++
		g.Go(func() error {
			metrics.ResolverInFlight.Inc()
			defer metrics.ResolverInFlight.Dec()

			info, err := r.lookup.Lookup(ctx, id)
			if err != nil {
				r.logFailure(id, err)
				return nil // Don't fail the batch for one identifier
			}
			if info == nil {
				r.logger.Debug("No safety data", "identifier", id)
				return nil
			}
			r.cache.Set(k, info)
			merge(k, info)
			return nil
		})
	}
	_ = g.Wait()

	if skipped := len(misses) - dispatched; skipped > 0 {
		r.logger.Warn("Resolve cancelled before dispatching all lookups", "skipped", skipped, "error", ctx.Err())
	}
	r.logger.Debug("Resolve complete",
		"identifiers", len(identifiers),
		"unique", len(keys),
		"cache_hits", len(keys)-len(misses),
		"resolved", len(results),
		"duration", time.Since(start),
	)
	return results
}

func (r *Resolver) logFailure(id string, err error) {
	attrs := []any{"identifier", id, "kind", provider.Kind(err), "error", err}
	var le *hazard.LookupError
	if errors.As(err, &le) {
		attrs = append(attrs, "provider", le.Provider, "status", le.StatusCode)
	}
	if errors.Is(err, context.Canceled) {
		r.logger.Debug("Lookup cancelled", attrs...)
		return
	}
	r.logger.Warn("Lookup failed", attrs...)
}

// ClearCache drops the local cache.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}
