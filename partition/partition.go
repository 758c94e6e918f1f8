// Package partition manages the marker objects that make a client's
// workload partitions enumerable before any document lands in them, and
// cleans partitions up again once their last document is gone.
package partition

import (
	"context"
	"log/slog"

	"github.com/c360/workplan/docstore"
	"github.com/c360/workplan/resource"
)

// Manager creates and removes partition markers.
type Manager struct {
	docs   *docstore.Store
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// New creates a Manager over docs.
func New(docs *docstore.Store, opts ...Option) *Manager {
	m := &Manager{docs: docs, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ensure writes the client, year and month markers for the given partition.
// Marker writes are idempotent, so re-ensuring an existing partition is
// harmless.
func (m *Manager) Ensure(ctx context.Context, clientID, year, month string) error {
	for _, key := range []string{
		resource.WorkloadPrefix(clientID),
		resource.WorkloadPrefix(clientID, year),
		resource.WorkloadPrefix(clientID, year, month),
	} {
		if err := m.docs.PutMarker(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// CleanupIfEmpty removes the month partition when it no longer holds any
// document, then the year partition under the same condition. It returns the
// partitions removed as "YYYY/MM" and "YYYY" entries.
//
// Cleanup is cosmetic: any failure is logged and swallowed so it can never
// fail the mutation that triggered it.
func (m *Manager) CleanupIfEmpty(ctx context.Context, clientID, year, month string) []string {
	cleaned := []string{}

	monthPrefix := resource.WorkloadPrefix(clientID, year, month)
	empty, err := m.partitionEmpty(ctx, monthPrefix)
	if err != nil {
		m.logger.Error("partition cleanup aborted",
			"client_id", clientID, "prefix", monthPrefix, "error", err)
		return cleaned
	}
	if !empty {
		return cleaned
	}

	if _, err := m.docs.DeletePrefix(ctx, monthPrefix); err != nil {
		m.logger.Error("failed to remove empty month partition",
			"client_id", clientID, "prefix", monthPrefix, "error", err)
		return cleaned
	}
	cleaned = append(cleaned, resource.NormalizeYear(year)+"/"+resource.NormalizeMonth(month))

	yearPrefix := resource.WorkloadPrefix(clientID, year)
	empty, err = m.partitionEmpty(ctx, yearPrefix)
	if err != nil {
		m.logger.Error("partition cleanup aborted",
			"client_id", clientID, "prefix", yearPrefix, "error", err)
		return cleaned
	}
	if empty {
		if _, err := m.docs.DeletePrefix(ctx, yearPrefix); err != nil {
			m.logger.Error("failed to remove empty year partition",
				"client_id", clientID, "prefix", yearPrefix, "error", err)
			return cleaned
		}
		cleaned = append(cleaned, resource.NormalizeYear(year))
	}

	return cleaned
}

// partitionEmpty reports whether no data document remains under prefix.
// Markers do not count.
func (m *Manager) partitionEmpty(ctx context.Context, prefix string) (bool, error) {
	docs, err := m.docs.ListDocuments(ctx, prefix)
	if err != nil {
		return false, err
	}
	return len(docs) == 0, nil
}
