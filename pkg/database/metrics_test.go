package database

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func describeAll(c prometheus.Collector) string {
	ch := make(chan *prometheus.Desc, 32)
	c.Describe(ch)
	close(ch)

	var b strings.Builder
	for d := range ch {
		b.WriteString(d.String())
	}
	return b.String()
}

func TestPoolStatsCollector_Describe(t *testing.T) {
	c := NewPoolStatsCollector(nil, "catalog")
	require.NotNil(t, c)
	assert.Len(t, c.metrics, 8)

	descs := describeAll(c)
	for _, name := range []string{
		"db_pool_acquired_connections",
		"db_pool_idle_connections",
		"db_pool_total_connections",
		"db_pool_max_connections",
		"db_pool_acquire_count_total",
		"db_pool_acquire_duration_seconds_total",
		"db_pool_empty_acquire_count_total",
		"db_pool_canceled_acquire_count_total",
	} {
		assert.Contains(t, descs, `"`+name+`"`)
	}
}

func TestRegisterPoolMetrics_RejectsDuplicates(t *testing.T) {
	reg := prometheus.NewRegistry()

	require.NoError(t, RegisterPoolMetrics(reg, nil, "catalog"))
	assert.Error(t, RegisterPoolMetrics(reg, nil, "catalog"))
}
