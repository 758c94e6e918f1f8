// Package summary maintains the denormalized workload rollup stored on each
// client document.
//
// The rollup is kept consistent two ways. The create path applies a cheap
// in-place delta because it already holds the new workload. Every other
// mutation triggers Recompute, a full rescan of the client's workload
// partition, because without secondary indexes the scan is the only source
// of truth.
package summary

import (
	"context"
	"log/slog"
	"sort"

	"github.com/c360/workplan/docstore"
	"github.com/c360/workplan/errors"
	"github.com/c360/workplan/pkg/worker"
	"github.com/c360/workplan/resource"
)

const defaultFetchWorkers = 8

// Aggregator computes and persists client summaries.
type Aggregator struct {
	docs    *docstore.Store
	logger  *slog.Logger
	workers int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// WithFetchWorkers bounds the concurrency of the rescan document fetch.
func WithFetchWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// New creates an Aggregator over docs.
func New(docs *docstore.Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		docs:    docs,
		logger:  slog.Default(),
		workers: defaultFetchWorkers,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Recompute rebuilds the summary for clientID by listing and reading every
// workload document under its partition. Documents that cannot be read are
// logged and skipped so one corrupt object cannot wedge the whole client.
func (a *Aggregator) Recompute(ctx context.Context, clientID string) (resource.Summary, error) {
	keys, err := a.docs.ListDocuments(ctx, resource.WorkloadPrefix(clientID))
	if err != nil {
		return resource.Summary{}, err
	}
	if len(keys) == 0 {
		return resource.EmptySummary(), nil
	}

	// Fetch in parallel, collecting by listing position so the reduce below
	// stays deterministic.
	indexes := make([]int, len(keys))
	for i := range keys {
		indexes[i] = i
	}
	workloads := make([]*resource.Workload, len(keys))
	stats := worker.ForEach(ctx, a.workers, indexes, func(ctx context.Context, i int) error {
		var w resource.Workload
		if err := a.docs.GetJSON(ctx, keys[i], &w); err != nil {
			a.logger.Warn("skipping unreadable workload document",
				"client_id", clientID, "key", keys[i], "error", err)
			return err
		}
		workloads[i] = &w
		return nil
	})
	if stats.Failed > 0 {
		a.logger.Warn("summary rescan skipped documents",
			"client_id", clientID, "total", len(keys), "skipped", stats.Failed)
	}

	return reduce(workloads), nil
}

// Refresh recomputes the summary and writes it onto the client document.
func (a *Aggregator) Refresh(ctx context.Context, clientID string) (resource.Summary, error) {
	sum, err := a.Recompute(ctx, clientID)
	if err != nil {
		return resource.Summary{}, err
	}
	if err := a.Apply(ctx, clientID, sum); err != nil {
		return resource.Summary{}, err
	}
	return sum, nil
}

// Apply writes sum onto the client document in a read-modify-write cycle,
// leaving every other client field untouched.
func (a *Aggregator) Apply(ctx context.Context, clientID string, sum resource.Summary) error {
	key := resource.ClientKey(clientID)
	var client resource.Client
	if err := a.docs.GetJSON(ctx, key, &client); err != nil {
		return err
	}
	client.Summary = sum
	if err := a.docs.PutJSON(ctx, key, client); err != nil {
		return errors.WrapDependency(err, "summary", "apply", "persist summary for "+clientID)
	}
	return nil
}

// Delta applies the create-path shortcut for one new workload: bump the
// counter for its status and mark it as the latest.
func Delta(s *resource.Summary, w resource.Workload) {
	s.Add(w.Status)
	s.CurrentStatus = resource.NormalizeStatus(w.Status)
	s.LastWorkloadID = w.ID
}

// reduce folds the readable workloads into a summary. The latest workload by
// creation time contributes the current status; earlier documents win ties.
func reduce(workloads []*resource.Workload) resource.Summary {
	sum := resource.EmptySummary()

	var latest *resource.Workload
	months := map[string]struct{}{}
	years := map[string]struct{}{}

	for _, w := range workloads {
		if w == nil {
			continue
		}
		sum.Add(w.Status)

		if year, month, err := periodCoordinates(w); err == nil {
			years[year] = struct{}{}
			months[month] = struct{}{}
		}

		if latest == nil || w.CreatedAt.After(latest.CreatedAt) {
			latest = w
		}
	}

	if latest == nil {
		return resource.EmptySummary()
	}

	sum.CurrentStatus = resource.NormalizeStatus(latest.Status)
	sum.LastWorkloadID = latest.ID
	sum.Months = sortedSet(months)
	sum.Years = sortedSet(years)
	return sum
}

// periodCoordinates reads the partition coordinates off a workload, falling
// back to the start date for documents written before periodo existed.
func periodCoordinates(w *resource.Workload) (year, month string, err error) {
	if w.Period != "" {
		if year, month, err = resource.SplitPeriod(w.Period); err == nil {
			return year, month, nil
		}
	}
	return resource.PeriodOf(w.StartDate)
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
