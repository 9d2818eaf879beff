package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProviderAggregates(t *testing.T) {
	provider := NewStaticProvider()

	provider.RecordTurn("s1", 0.8, false)
	provider.RecordTurn("s1", 0.4, true)
	provider.RecordTurn("s2", 0.9, false)

	stats, ok := provider.SessionMetrics("s1")
	require.True(t, ok)
	assert.Equal(t, 2, stats.TurnCount)
	assert.Equal(t, 1, stats.FallbackCount)
	assert.InDelta(t, 0.6, stats.MeanConfidence, 0.001)

	stats, ok = provider.SessionMetrics("s2")
	require.True(t, ok)
	assert.Equal(t, 1, stats.TurnCount)
	assert.Zero(t, stats.FallbackCount)
}

func TestStaticProviderUnknownSession(t *testing.T) {
	provider := NewStaticProvider()
	_, ok := provider.SessionMetrics("ghost")
	assert.False(t, ok)
}

func TestPrometheusProviderExportsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	provider := NewPrometheusProvider(registry)

	provider.RecordTurn("s1", 0.7, false)
	provider.RecordTurn("s1", 0.3, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(provider.turns.WithLabelValues("s1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(provider.fallbacks.WithLabelValues("s1")))

	stats, ok := provider.SessionMetrics("s1")
	require.True(t, ok)
	assert.Equal(t, 2, stats.TurnCount)
}
