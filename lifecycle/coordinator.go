// Package lifecycle orchestrates create, update and delete flows for clients
// and workloads: validation first, then storage, then summary and partition
// maintenance, then best-effort notification side effects.
package lifecycle

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c360/workplan/docstore"
	"github.com/c360/workplan/notify"
	"github.com/c360/workplan/partition"
	"github.com/c360/workplan/summary"
	"github.com/c360/workplan/validate"
)

const component = "lifecycle"

// Deps are the collaborators a Coordinator drives.
type Deps struct {
	Docs       *docstore.Store
	Partitions *partition.Manager
	Summaries  *summary.Aggregator
	Notifier   *notify.Service
}

// Coordinator runs the per-resource mutation flows.
type Coordinator struct {
	docs       *docstore.Store
	partitions *partition.Manager
	summaries  *summary.Aggregator
	notifier   *notify.Service
	validator  *validate.Validator
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithValidator replaces the payload validator.
func WithValidator(v *validate.Validator) Option {
	return func(c *Coordinator) { c.validator = v }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithIDGenerator replaces the workload id generator.
func WithIDGenerator(gen func() string) Option {
	return func(c *Coordinator) { c.newID = gen }
}

// New creates a Coordinator.
func New(deps Deps, opts ...Option) *Coordinator {
	c := &Coordinator{
		docs:       deps.Docs,
		partitions: deps.Partitions,
		summaries:  deps.Summaries,
		notifier:   deps.Notifier,
		validator:  validate.New(),
		logger:     slog.Default(),
		now:        time.Now,
		newID:      shortID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// shortID returns the first segment of a fresh UUID. Eight hex characters
// are plenty inside a partition that is already scoped per client and month.
func shortID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
