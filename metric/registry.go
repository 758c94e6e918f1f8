// Package metric manages prometheus metric registration for workplan
// services. Components create their own collectors and register them here
// under a service name, keeping one registry per process.
package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/workplan/errors"
)

// Registrar is the interface components use to register their metrics.
type Registrar interface {
	RegisterCounter(serviceName, metricName string, counter prometheus.Counter) error
	RegisterGauge(serviceName, metricName string, gauge prometheus.Gauge) error
	RegisterCounterVec(serviceName, metricName string, counterVec *prometheus.CounterVec) error
	RegisterHistogramVec(serviceName, metricName string, histogramVec *prometheus.HistogramVec) error
	Unregister(serviceName, metricName string) bool
}

// Registry manages the registration and lifecycle of metrics.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	registered         map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewRegistry creates a registry with Go runtime and process collectors
// pre-registered.
func NewRegistry() *Registry {
	reg := &Registry{
		prometheusRegistry: prometheus.NewRegistry(),
		registered:         make(map[string]prometheus.Collector),
	}

	reg.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg
}

// PrometheusRegistry returns the underlying prometheus registry for scraping.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

func (r *Registry) register(serviceName, metricName string, c prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", serviceName, metricName)
	if _, exists := r.registered[key]; exists {
		return errors.WrapDependency(
			fmt.Errorf("metric %s already registered for service %s", metricName, serviceName),
			"Registry", "register", "duplicate metric registration")
	}

	if err := r.prometheusRegistry.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if stderrors.As(err, &already) {
			return errors.WrapDependency(err, "Registry", "register",
				fmt.Sprintf("prometheus conflict for metric %s", metricName))
		}
		return errors.WrapDependency(err, "Registry", "register", "register collector")
	}

	r.registered[key] = c
	return nil
}

// RegisterCounter registers a counter metric for a service.
func (r *Registry) RegisterCounter(serviceName, metricName string, counter prometheus.Counter) error {
	return r.register(serviceName, metricName, counter)
}

// RegisterGauge registers a gauge metric for a service.
func (r *Registry) RegisterGauge(serviceName, metricName string, gauge prometheus.Gauge) error {
	return r.register(serviceName, metricName, gauge)
}

// RegisterCounterVec registers a counter vector metric for a service.
func (r *Registry) RegisterCounterVec(serviceName, metricName string, counterVec *prometheus.CounterVec) error {
	return r.register(serviceName, metricName, counterVec)
}

// RegisterHistogramVec registers a histogram vector metric for a service.
func (r *Registry) RegisterHistogramVec(serviceName, metricName string, histogramVec *prometheus.HistogramVec) error {
	return r.register(serviceName, metricName, histogramVec)
}

// Unregister removes a metric from the registry.
func (r *Registry) Unregister(serviceName, metricName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", serviceName, metricName)
	collector, exists := r.registered[key]
	if !exists {
		return false
	}

	ok := r.prometheusRegistry.Unregister(collector)
	if ok {
		delete(r.registered, key)
	}
	return ok
}
