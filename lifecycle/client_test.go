package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/workplan/errors"
	"github.com/c360/workplan/resource"
)

func TestCreateClientStoresDocumentAndMarker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.coord.CreateClient(ctx, clientInput())
	require.NoError(t, err)

	assert.Equal(t, "ACC00000001", result.Client.AccountID)
	assert.Equal(t, resource.StatusNone, result.Client.Summary.CurrentStatus)
	assert.Equal(t, f.now, result.Client.CreatedAt)
	assert.Empty(t, result.Workloads)

	var stored resource.Client
	require.NoError(t, f.docs.GetJSON(ctx, resource.ClientKey("ACC00000001"), &stored))
	assert.Equal(t, "Acme Corp", stored.Name)

	found, err := f.docs.Exists(ctx, "workloads/ACC00000001/")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCreateClientConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coord.CreateClient(ctx, clientInput())
	require.NoError(t, err)

	_, err = f.coord.CreateClient(ctx, clientInput())
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.Contains(t, err.Error(), "ya existe")
}

func TestCreateClientValidationCollectsAllViolations(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.CreateClient(context.Background(), resource.ClientInput{
		AccountID: "short",
		Name:      "ab",
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	violations := errors.ViolationsOf(err)
	assert.Len(t, violations, 3)
	assert.Contains(t, violations, "tipo_proyecto: campo requerido")

	// Nothing was written.
	assert.Zero(t, f.backend.Len())
}

func TestCreateClientWithEmbeddedWorkloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := clientInput()
	w2 := workloadInput()
	w2.StartDate = "05-11-2025"
	w2.EndDate = "05-12-2025"
	w2.Status = resource.StatusCompleted
	in.Workloads = []resource.WorkloadInput{workloadInput(), w2}

	result, err := f.coord.CreateClient(ctx, in)
	require.NoError(t, err)
	require.Len(t, result.Workloads, 2)
	assert.Equal(t, 2, result.Notified)
	assert.Empty(t, result.WorkloadFailures)

	// The persisted client carries the delta-maintained summary.
	var stored resource.Client
	require.NoError(t, f.docs.GetJSON(ctx, resource.ClientKey("ACC00000001"), &stored))
	assert.Equal(t, 2, stored.Summary.Total)
	assert.Equal(t, 1, stored.Summary.InProgress)
	assert.Equal(t, 1, stored.Summary.Completed)
	assert.Equal(t, resource.StatusCompleted, stored.Summary.CurrentStatus)
	assert.Equal(t, result.Workloads[1].Workload.ID, stored.Summary.LastWorkloadID)

	// Each workload landed in its own partition with sent notifications.
	var w resource.Workload
	key := resource.WorkloadKey("ACC00000001", "2025", "11", result.Workloads[1].Workload.ID)
	require.NoError(t, f.docs.GetJSON(ctx, key, &w))
	assert.Equal(t, resource.NotificationSent, w.Notification)
	assert.Equal(t, "2025-11", w.Period)

	assert.Len(t, f.sender.Messages(), 2)
}

func TestCreateClientEmbeddedWorkloadValidationFailsWholeClient(t *testing.T) {
	f := newFixture(t)

	in := clientInput()
	bad := workloadInput()
	bad.StartDate = "10-04-2025"
	bad.EndDate = "10-03-2025"
	in.Workloads = []resource.WorkloadInput{bad}

	_, err := f.coord.CreateClient(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, errors.ViolationsOf(err),
		"workload[1] - fecha_inicio debe ser anterior a fecha_fin")
	assert.Zero(t, f.backend.Len())
}

func TestUpdateClientPreservesSummaryAndCreation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := clientInput()
	in.Workloads = []resource.WorkloadInput{workloadInput()}
	created, err := f.coord.CreateClient(ctx, in)
	require.NoError(t, err)

	updated, err := f.coord.UpdateClient(ctx, resource.ClientUpdate{
		AccountID:   "ACC00000001",
		Name:        "Acme Corporation",
		ProjectType: "modernizacion",
		Commitment:  "trimestral",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Corporation", updated.Name)
	assert.Equal(t, created.Client.CreatedAt, updated.CreatedAt)
	assert.Equal(t, created.Client.Summary, updated.Summary)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, f.now, *updated.UpdatedAt)
}

func TestUpdateClientNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.UpdateClient(context.Background(), resource.ClientUpdate{
		AccountID:   "ACC00000099",
		Name:        "Ghost",
		ProjectType: "migracion",
		Commitment:  "anual",
	})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "no existe")
}

func TestDeleteClientCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := clientInput()
	in.Workloads = []resource.WorkloadInput{workloadInput()}
	_, err := f.coord.CreateClient(ctx, in)
	require.NoError(t, err)

	result, err := f.coord.DeleteClient(ctx, "ACC00000001")
	require.NoError(t, err)
	// Client marker, year and month markers, and the workload document.
	assert.Equal(t, 4, result.RemovedObjects)
	assert.Zero(t, f.backend.Len())
}

func TestDeleteClientNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.DeleteClient(context.Background(), "ACC00000099")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
