package objectstore

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/workplan/metric"
)

type storeMetrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// WithMetrics registers per-operation counters and latency histograms with
// the registry. Registration failures are returned through the option's
// silent-skip behavior: a store without metrics still stores.
func WithMetrics(registry *metric.Registry) StoreOption {
	return func(s *Store) {
		m := &storeMetrics{
			ops: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "workplan_objectstore_operations_total",
				Help: "Object store operations by type and status",
			}, []string{"operation", "status"}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "workplan_objectstore_operation_duration_seconds",
				Help:    "Object store operation latency",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			}, []string{"operation"}),
		}

		if err := registry.RegisterCounterVec("objectstore", "operations_total", m.ops); err != nil {
			return
		}
		if err := registry.RegisterHistogramVec("objectstore", "operation_duration_seconds", m.duration); err != nil {
			registry.Unregister("objectstore", "operations_total")
			return
		}

		s.metrics = m
	}
}
