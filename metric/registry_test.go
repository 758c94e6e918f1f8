package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndUnregisterCounter(t *testing.T) {
	reg := NewRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workplan_test_ops_total",
		Help: "test counter",
	})

	require.NoError(t, reg.RegisterCounter("docstore", "ops_total", counter))
	assert.True(t, reg.Unregister("docstore", "ops_total"))
	assert.False(t, reg.Unregister("docstore", "ops_total"))
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	reg := NewRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workplan_test_dup_total",
		Help: "test counter",
	})

	require.NoError(t, reg.RegisterCounter("docstore", "dup_total", counter))
	err := reg.RegisterCounter("docstore", "dup_total", counter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegisterVecs(t *testing.T) {
	reg := NewRegistry()

	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workplan_test_vec_total",
		Help: "test counter vec",
	}, []string{"op"})
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "workplan_test_duration_seconds",
		Help: "test histogram vec",
	}, []string{"op"})

	require.NoError(t, reg.RegisterCounterVec("store", "vec_total", cv))
	require.NoError(t, reg.RegisterHistogramVec("store", "duration_seconds", hv))
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := NewRegistry()
	assert.NotNil(t, reg.Handler())
}
