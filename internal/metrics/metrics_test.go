package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestMetrics_ObserveCountersAccumulates(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCounters(10, 2, 1)
	assert.Equal(t, 10.0, counterValue(t, m.Completed))
	assert.Equal(t, 2.0, counterValue(t, m.Errors))
	assert.Equal(t, 1.0, counterValue(t, m.Missed))
}

func TestMetrics_SetQueueDepthOverwrites(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetQueueDepth(5)
	assert.Equal(t, 5.0, gaugeValue(t, m.QueueDepth))
	m.SetQueueDepth(3)
	assert.Equal(t, 3.0, gaugeValue(t, m.QueueDepth))
}

func TestMetrics_NilReceiverIsNoOp(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCounters(1, 1, 1)
		m.SetQueueDepth(1)
	})
}
