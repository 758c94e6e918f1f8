// Package report builds read-only views over the stored documents: per-year
// and per-month workload breakdowns, periodic reports, and client and
// workload listings. Everything here is derived by scanning partitions;
// nothing is cached or indexed.
package report

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/c360/workplan/docstore"
	"github.com/c360/workplan/pkg/worker"
	"github.com/c360/workplan/resource"
)

const defaultFetchWorkers = 8

// Service answers reporting queries.
type Service struct {
	docs    *docstore.Store
	logger  *slog.Logger
	workers int
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithFetchWorkers bounds the concurrency of document fetches.
func WithFetchWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service over docs.
func New(docs *docstore.Store, opts ...Option) *Service {
	s := &Service{
		docs:    docs,
		logger:  slog.Default(),
		workers: defaultFetchWorkers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StatusCounts tallies workloads by status.
type StatusCounts struct {
	Total      int `json:"totales"`
	Completed  int `json:"completado"`
	InProgress int `json:"en_progreso"`
	Paused     int `json:"pausado"`
	Canceled   int `json:"cancelado"`
}

func (c *StatusCounts) add(status resource.Status) {
	c.Total++
	switch resource.NormalizeStatus(status) {
	case resource.StatusCompleted:
		c.Completed++
	case resource.StatusInProgress:
		c.InProgress++
	case resource.StatusPaused:
		c.Paused++
	case resource.StatusCanceled:
		c.Canceled++
	}
}

// YearBreakdown tallies one year, with a nested tally per month.
type YearBreakdown struct {
	StatusCounts
	Months map[string]*StatusCounts `json:"meses"`
}

// Analysis is the full per-year, per-month breakdown of a client's
// workloads.
type Analysis struct {
	ClientID    string                    `json:"id_cliente"`
	Years       []string                  `json:"años"`
	ByYear      map[string]*YearBreakdown `json:"resumen_por_año"`
	GeneratedAt time.Time                 `json:"generado_en"`
}

// Analyze scans every workload of a client and breaks the counts down by the
// partition coordinates in the object keys. Unreadable documents are skipped.
func (s *Service) Analyze(ctx context.Context, clientID string) (Analysis, error) {
	prefix := resource.WorkloadPrefix(clientID)
	keys, err := s.docs.ListDocuments(ctx, prefix)
	if err != nil {
		return Analysis{}, err
	}

	analysis := Analysis{
		ClientID:    clientID,
		Years:       []string{},
		ByYear:      map[string]*YearBreakdown{},
		GeneratedAt: s.now().UTC(),
	}
	if len(keys) == 0 {
		return analysis, nil
	}

	workloads := s.fetchAll(ctx, keys)

	yearsSet := map[string]struct{}{}
	for i, key := range keys {
		if workloads[i] == nil {
			continue
		}
		year, month, ok := coordinatesFromKey(key, prefix)
		if !ok {
			continue
		}
		yearsSet[year] = struct{}{}

		breakdown := analysis.ByYear[year]
		if breakdown == nil {
			breakdown = &YearBreakdown{Months: map[string]*StatusCounts{}}
			analysis.ByYear[year] = breakdown
		}
		monthCounts := breakdown.Months[month]
		if monthCounts == nil {
			monthCounts = &StatusCounts{}
			breakdown.Months[month] = monthCounts
		}

		breakdown.add(workloads[i].Status)
		monthCounts.add(workloads[i].Status)
	}

	for year := range yearsSet {
		analysis.Years = append(analysis.Years, year)
	}
	sort.Strings(analysis.Years)
	return analysis, nil
}

// Scope selects the partition a periodic report covers.
type Scope string

// Report scopes.
const (
	ScopeAnnual  Scope = "anual"
	ScopeMonthly Scope = "mensual"
)

// Report is a periodic workload report over one year or one month.
type Report struct {
	ClientID  string              `json:"cliente"`
	Year      string              `json:"año"`
	Month     string              `json:"mes,omitempty"`
	Scope     Scope               `json:"tipoReporte"`
	Workloads []resource.Workload `json:"workloads"`
	StatusCounts
}

// Generate builds a report over the year partition, narrowed to one month
// for ScopeMonthly.
func (s *Service) Generate(ctx context.Context, clientID, year, month string, scope Scope) (Report, error) {
	var prefix string
	if scope == ScopeMonthly {
		prefix = resource.WorkloadPrefix(clientID, year, month)
	} else {
		prefix = resource.WorkloadPrefix(clientID, year)
	}

	keys, err := s.docs.ListDocuments(ctx, prefix)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		ClientID:  clientID,
		Year:      resource.NormalizeYear(year),
		Scope:     scope,
		Workloads: []resource.Workload{},
	}
	if scope == ScopeMonthly {
		report.Month = resource.NormalizeMonth(month)
	}

	for _, w := range s.fetchAll(ctx, keys) {
		if w == nil {
			continue
		}
		report.Workloads = append(report.Workloads, *w)
		report.add(w.Status)
	}
	return report, nil
}

// fetchAll reads every key in parallel, returning results positionally.
// Unreadable documents come back nil and are logged.
func (s *Service) fetchAll(ctx context.Context, keys []string) []*resource.Workload {
	indexes := make([]int, len(keys))
	for i := range keys {
		indexes[i] = i
	}
	workloads := make([]*resource.Workload, len(keys))
	stats := worker.ForEach(ctx, s.workers, indexes, func(ctx context.Context, i int) error {
		var w resource.Workload
		if err := s.docs.GetJSON(ctx, keys[i], &w); err != nil {
			s.logger.Warn("skipping unreadable workload document", "key", keys[i], "error", err)
			return err
		}
		workloads[i] = &w
		return nil
	})
	if stats.Failed > 0 {
		s.logger.Warn("report scan skipped documents", "total", len(keys), "skipped", stats.Failed)
	}
	return workloads
}

// coordinatesFromKey extracts year and month from a workload document key
// relative to the client prefix.
func coordinatesFromKey(key, prefix string) (year, month string, ok bool) {
	parts := strings.Split(strings.TrimPrefix(key, prefix), "/")
	if len(parts) < 3 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
