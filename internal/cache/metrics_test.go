package cache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrument_CountsTraffic(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "memory")
	s := Instrument(NewMemoryStore(), m)
	ctx := context.Background()

	s.Get(ctx, "k")
	s.Set(ctx, "k", []byte("v"), time.Minute, TagProducts)
	s.Get(ctx, "k")
	s.Get(ctx, "k")
	s.InvalidateByTag(ctx, TagProducts)
	s.InvalidateAll(ctx)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.hits))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.misses))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.sets))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.invalidations.WithLabelValues("tag:products")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.invalidations.WithLabelValues("all")))
}

func TestInstrument_CountsStaleSets(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "memory")
	s := Instrument(NewMemoryStore(), m)
	ctx := context.Background()

	gen := s.Generation(ctx, TagProducts)
	s.SetIfCurrent(ctx, "a", []byte("v"), time.Minute, TagProducts, gen)
	s.InvalidateByTag(ctx, TagProducts)
	s.SetIfCurrent(ctx, "b", []byte("v"), time.Minute, TagProducts, gen)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.sets))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.staleSets))
}
