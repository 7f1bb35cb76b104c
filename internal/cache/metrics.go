package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts cache traffic by backend.
type Metrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	sets          prometheus.Counter
	staleSets     prometheus.Counter
	invalidations *prometheus.CounterVec
}

// NewMetrics registers the catalog cache counters with reg.
func NewMetrics(reg prometheus.Registerer, backend string) *Metrics {
	f := promauto.With(reg)
	labels := prometheus.Labels{"backend": backend}
	return &Metrics{
		hits: f.NewCounter(prometheus.CounterOpts{
			Name:        "catalog_cache_hits_total",
			Help:        "Total number of catalog cache hits",
			ConstLabels: labels,
		}),
		misses: f.NewCounter(prometheus.CounterOpts{
			Name:        "catalog_cache_misses_total",
			Help:        "Total number of catalog cache misses",
			ConstLabels: labels,
		}),
		sets: f.NewCounter(prometheus.CounterOpts{
			Name:        "catalog_cache_sets_total",
			Help:        "Total number of catalog cache writes",
			ConstLabels: labels,
		}),
		staleSets: f.NewCounter(prometheus.CounterOpts{
			Name:        "catalog_cache_stale_sets_total",
			Help:        "Total number of cache writes skipped because an invalidation raced them",
			ConstLabels: labels,
		}),
		invalidations: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "catalog_cache_invalidations_total",
			Help:        "Total number of catalog cache invalidations by scope",
			ConstLabels: labels,
		}, []string{"scope"}),
	}
}

type instrumented struct {
	next    Store
	metrics *Metrics
}

// Instrument wraps next so every call is counted in m.
func Instrument(next Store, m *Metrics) Store {
	return &instrumented{next: next, metrics: m}
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := s.next.Get(ctx, key)
	if ok {
		s.metrics.hits.Inc()
	} else {
		s.metrics.misses.Inc()
	}
	return v, ok
}

func (s *instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) {
	s.next.Set(ctx, key, value, ttl, tags...)
	s.metrics.sets.Inc()
}

func (s *instrumented) SetIfCurrent(ctx context.Context, key string, value []byte, ttl time.Duration, tag string, gen uint64) bool {
	stored := s.next.SetIfCurrent(ctx, key, value, ttl, tag, gen)
	if stored {
		s.metrics.sets.Inc()
	} else {
		s.metrics.staleSets.Inc()
	}
	return stored
}

func (s *instrumented) Generation(ctx context.Context, tag string) uint64 {
	return s.next.Generation(ctx, tag)
}

func (s *instrumented) InvalidateAll(ctx context.Context) {
	s.next.InvalidateAll(ctx)
	s.metrics.invalidations.WithLabelValues("all").Inc()
}

func (s *instrumented) InvalidateByTag(ctx context.Context, tag string) {
	s.next.InvalidateByTag(ctx, tag)
	s.metrics.invalidations.WithLabelValues("tag:" + tag).Inc()
}
