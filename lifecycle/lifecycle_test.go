package lifecycle

import (
	"fmt"
	"testing"
	"time"

	"github.com/c360/workplan/docstore"
	"github.com/c360/workplan/notify"
	"github.com/c360/workplan/partition"
	"github.com/c360/workplan/pkg/retry"
	"github.com/c360/workplan/resource"
	"github.com/c360/workplan/storage/memstore"
	"github.com/c360/workplan/summary"
	"github.com/c360/workplan/validate"
)

// fixture wires a Coordinator over an in-memory backend with a pinned clock
// and sequential workload ids.
type fixture struct {
	coord   *Coordinator
	docs    *docstore.Store
	backend *memstore.Store
	sender  *notify.Recorder
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := memstore.New()
	docs := docstore.New(backend, docstore.WithRetry(retry.Config{
		MaxAttempts:  1,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1,
	}))
	sender := notify.NewRecorder()
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	seq := 0
	coord := New(Deps{
		Docs:       docs,
		Partitions: partition.New(docs),
		Summaries:  summary.New(docs),
		Notifier:   notify.NewService(sender),
	},
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("wl%06d", seq)
		}),
		WithValidator(&validate.Validator{
			MinYear: 2024,
			Now:     func() time.Time { return now },
		}),
	)

	return &fixture{coord: coord, docs: docs, backend: backend, sender: sender, now: now}
}

func clientInput() resource.ClientInput {
	return resource.ClientInput{
		AccountID:   "ACC00000001",
		Name:        "Acme Corp",
		ProjectType: "migracion",
		Commitment:  "anual",
	}
}

func workloadInput() resource.WorkloadInput {
	return resource.WorkloadInput{
		ClientID:  "ACC00000001",
		StartDate: "10-03-2025",
		EndDate:   "10-04-2025",
		SDM:       "Jane Roe",
		Status:    resource.StatusInProgress,
		Owner:     "lead@example.com",
	}
}
