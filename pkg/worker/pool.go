// Package worker provides a generic bounded worker pool for concurrent task
// processing, used for fan-out document reads during summary recomputation
// and report generation.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/workplan/metric"
)

// Pool processes work items of type T with a fixed number of goroutines and
// a bounded queue.
type Pool[T any] struct {
	workers   int
	queueSize int
	processor func(context.Context, T) error

	workChan chan T
	wg       *sync.WaitGroup

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	submitted int64
	processed int64
	failed    int64
	dropped   int64

	metrics *poolMetrics
}

type poolMetrics struct {
	submitted      prometheus.Counter
	processed      prometheus.Counter
	failed         prometheus.Counter
	dropped        prometheus.Counter
	processingTime *prometheus.HistogramVec
}

// Option configures a Pool.
type Option[T any] func(*Pool[T])

// WithMetrics registers pool metrics under prefix with the given registry.
func WithMetrics[T any](registry *metric.Registry, prefix string) Option[T] {
	return func(p *Pool[T]) {
		m := &poolMetrics{
			submitted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: prefix + "_submitted_total",
				Help: "Total work items submitted",
			}),
			processed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: prefix + "_processed_total",
				Help: "Total work items processed",
			}),
			failed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: prefix + "_failed_total",
				Help: "Total work items that failed processing",
			}),
			dropped: prometheus.NewCounter(prometheus.CounterOpts{
				Name: prefix + "_dropped_total",
				Help: "Total work items dropped due to full queue",
			}),
			processingTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    prefix + "_processing_duration_seconds",
				Help:    "Time spent processing work items",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			}, []string{"status"}),
		}

		svc := "worker_pool"
		_ = registry.RegisterCounter(svc, prefix+"_submitted_total", m.submitted)
		_ = registry.RegisterCounter(svc, prefix+"_processed_total", m.processed)
		_ = registry.RegisterCounter(svc, prefix+"_failed_total", m.failed)
		_ = registry.RegisterCounter(svc, prefix+"_dropped_total", m.dropped)
		_ = registry.RegisterHistogramVec(svc, prefix+"_processing_duration_seconds", m.processingTime)

		p.metrics = m
	}
}

// NewPool creates a pool with the given worker count, queue size and
// processor. Panics if processor is nil.
func NewPool[T any](workers, queueSize int, processor func(context.Context, T) error, opts ...Option[T]) *Pool[T] {
	if workers <= 0 {
		workers = 8
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	if processor == nil {
		panic(ErrNilProcessor)
	}

	pool := &Pool[T]{
		workers:   workers,
		queueSize: queueSize,
		processor: processor,
		workChan:  make(chan T, queueSize),
	}

	for _, opt := range opts {
		opt(pool)
	}

	return pool
}

// Start launches the worker goroutines.
func (p *Pool[T]) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.started {
		return ErrPoolAlreadyStarted
	}

	p.wg = &sync.WaitGroup{}
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}

	p.started = true
	return nil
}

// Submit enqueues work without blocking. Returns ErrQueueFull when the
// queue is at capacity.
func (p *Pool[T]) Submit(work T) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.workChan <- work:
		atomic.AddInt64(&p.submitted, 1)
		if p.metrics != nil {
			p.metrics.submitted.Inc()
		}
		return nil
	default:
		atomic.AddInt64(&p.dropped, 1)
		if p.metrics != nil {
			p.metrics.dropped.Inc()
		}
		return ErrQueueFull
	}
}

// Stop closes the queue and waits up to timeout for in-flight work.
func (p *Pool[T]) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started || p.stopped {
		return nil
	}

	close(p.workChan)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		p.stopped = true
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// Stats describes pool activity counters.
type Stats struct {
	Workers    int   `json:"workers"`
	QueueDepth int   `json:"queue_depth"`
	Submitted  int64 `json:"submitted"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

// Stats returns current pool statistics.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Workers:    p.workers,
		QueueDepth: len(p.workChan),
		Submitted:  atomic.LoadInt64(&p.submitted),
		Processed:  atomic.LoadInt64(&p.processed),
		Failed:     atomic.LoadInt64(&p.failed),
		Dropped:    atomic.LoadInt64(&p.dropped),
	}
}

func (p *Pool[T]) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case work, ok := <-p.workChan:
			if !ok {
				return
			}

			start := time.Now()
			err := p.processor(ctx, work)
			duration := time.Since(start)

			atomic.AddInt64(&p.processed, 1)
			if err != nil {
				atomic.AddInt64(&p.failed, 1)
			}

			if p.metrics != nil {
				p.metrics.processed.Inc()
				status := "success"
				if err != nil {
					p.metrics.failed.Inc()
					status = "error"
				}
				p.metrics.processingTime.WithLabelValues(status).Observe(duration.Seconds())
			}
		}
	}
}

// ForEach runs fn over items with bounded concurrency and waits for
// completion. Item failures are counted but do not stop the remaining items;
// the worst thing a bad document can do is get skipped.
func ForEach[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) Stats {
	pool := NewPool(workers, len(items)+1, fn)
	_ = pool.Start(ctx)
	for _, item := range items {
		_ = pool.Submit(item)
	}
	_ = pool.Stop(time.Minute)
	return pool.Stats()
}
