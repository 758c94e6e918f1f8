package batch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/workplan/docstore"
	"github.com/c360/workplan/lifecycle"
	"github.com/c360/workplan/notify"
	"github.com/c360/workplan/partition"
	"github.com/c360/workplan/pkg/retry"
	"github.com/c360/workplan/resource"
	"github.com/c360/workplan/storage/memstore"
	"github.com/c360/workplan/summary"
	"github.com/c360/workplan/validate"
)

type fixture struct {
	orch    *Orchestrator
	docs    *docstore.Store
	backend *memstore.Store
	sender  *notify.Recorder
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
	coord := lifecycle.New(lifecycle.Deps{
		Docs:       docs,
		Partitions: partition.New(docs),
		Summaries:  summary.New(docs),
		Notifier:   notify.NewService(sender),
	},
		lifecycle.WithClock(func() time.Time { return now }),
		lifecycle.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("wl%06d", seq)
		}),
		lifecycle.WithValidator(&validate.Validator{
			MinYear: 2024,
			Now:     func() time.Time { return now },
		}),
	)

	return &fixture{orch: New(coord), docs: docs, backend: backend, sender: sender}
}

func clientItem(id, name string) resource.ClientInput {
	return resource.ClientInput{
		AccountID:   id,
		Name:        name,
		ProjectType: "migracion",
		Commitment:  "anual",
	}
}

func workloadItem(clientID, start, end string) resource.WorkloadInput {
	return resource.WorkloadInput{
		ClientID:  clientID,
		StartDate: start,
		EndDate:   end,
		SDM:       "Jane Roe",
		Status:    resource.StatusInProgress,
		Owner:     "lead@example.com",
	}
}

func (f *fixture) mustCreateClient(t *testing.T, id, name string) {
	t.Helper()
	result, err := f.orch.Execute(context.Background(), CreateClients{
		Items: []resource.ClientInput{clientItem(id, name)},
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeComplete, result.Outcome)
}

func TestSingleClientCreate(t *testing.T) {
	f := newFixture(t)

	result, err := f.orch.Execute(context.Background(), CreateClients{
		Items: []resource.ClientInput{clientItem("ACC00000001", "Acme Corp")},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeComplete, result.Outcome)
	assert.Equal(t, "Cliente creado correctamente", result.Message)
	assert.Equal(t, 1, result.Succeeded)
	assert.Zero(t, result.Failed)
	require.Len(t, result.Clients, 1)
}

func TestSingleClientCreateConflict(t *testing.T) {
	f := newFixture(t)
	f.mustCreateClient(t, "ACC00000001", "Acme Corp")

	result, err := f.orch.Execute(context.Background(), CreateClients{
		Items: []resource.ClientInput{clientItem("ACC00000001", "Acme Corp")},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeConflict, result.Outcome)
	assert.Equal(t, "Error creando cliente", result.Message)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Cliente ya existe", result.Errors[0].Reason)
	assert.Contains(t, result.Errors[0].Details[0], "ya existe")
}

func TestClientBatchPartial(t *testing.T) {
	f := newFixture(t)

	result, err := f.orch.Execute(context.Background(), CreateClients{
		Batch: true,
		Items: []resource.ClientInput{
			clientItem("ACC00000001", "Acme Corp"),
			{AccountID: "bad", Name: "x", ProjectType: ""},
			clientItem("ACC00000003", "Globex"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomePartial, result.Outcome)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "2 clientes creados, 1 fallaron", result.Message)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, "Validación fallida", result.Errors[0].Reason)
}

func TestClientBatchAllSucceedMessage(t *testing.T) {
	f := newFixture(t)

	in1 := clientItem("ACC00000001", "Acme Corp")
	in1.Workloads = []resource.WorkloadInput{workloadItem("", "10-03-2025", "10-04-2025")}
	result, err := f.orch.Execute(context.Background(), CreateClients{
		Batch: true,
		Items: []resource.ClientInput{in1, clientItem("ACC00000002", "Globex")},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeComplete, result.Outcome)
	assert.Equal(t, "2 clientes creados correctamente con 1 cargas de trabajo", result.Message)
	assert.Equal(t, 1, result.WorkloadsSucceeded)
	assert.Equal(t, 1, result.Notified)
}

func TestWorkloadBatchIsolatesFailingItem(t *testing.T) {
	f := newFixture(t)
	f.mustCreateClient(t, "ACC00000001", "Acme Corp")

	// Three workloads; the item at index 2 has an inverted date range.
	result, err := f.orch.Execute(context.Background(), CreateWorkloads{
		Batch: true,
		Items: []resource.WorkloadInput{
			workloadItem("ACC00000001", "10-03-2025", "10-04-2025"),
			workloadItem("ACC00000001", "15-03-2025", "15-04-2025"),
			workloadItem("ACC00000001", "10-04-2025", "10-03-2025"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomePartial, result.Outcome)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "2 cargas creadas, 1 falló", result.Message)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Index)
	assert.Equal(t, "Validación fallida", result.Errors[0].Reason)
	assert.Contains(t, result.Errors[0].Details, "fecha_inicio debe ser anterior a fecha_fin")

	// The two good items are stored and counted on the client.
	var client resource.Client
	require.NoError(t, f.docs.GetJSON(context.Background(),
		resource.ClientKey("ACC00000001"), &client))
	assert.Equal(t, 2, client.Summary.Total)
}

func TestWorkloadBatchAllNotified(t *testing.T) {
	f := newFixture(t)
	f.mustCreateClient(t, "ACC00000001", "Acme Corp")

	result, err := f.orch.Execute(context.Background(), CreateWorkloads{
		Batch: true,
		Items: []resource.WorkloadInput{
			workloadItem("ACC00000001", "10-03-2025", "10-04-2025"),
			workloadItem("ACC00000001", "15-03-2025", "15-04-2025"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeComplete, result.Outcome)
	assert.Equal(t, "Todas las cargas fueron creadas y notificadas correctamente", result.Message)
	assert.Equal(t, 2, result.Notified)
}

func TestSingleWorkloadClientMissing(t *testing.T) {
	f := newFixture(t)

	result, err := f.orch.Execute(context.Background(), CreateWorkloads{
		Items: []resource.WorkloadInput{workloadItem("ACC00000099", "10-03-2025", "10-04-2025")},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeNotFound, result.Outcome)
	assert.Equal(t, "Error creando carga de trabajo", result.Message)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Cliente no existe", result.Errors[0].Reason)
}

func TestSingleWorkloadNotificationFailureMessage(t *testing.T) {
	f := newFixture(t)
	f.mustCreateClient(t, "ACC00000001", "Acme Corp")
	f.sender.FailDeliveries()

	result, err := f.orch.Execute(context.Background(), CreateWorkloads{
		Items: []resource.WorkloadInput{workloadItem("ACC00000001", "10-03-2025", "10-04-2025")},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeComplete, result.Outcome)
	assert.Equal(t, "Carga de trabajo creada, pero no se pudo enviar notificación", result.Message)
	assert.Equal(t, 1, result.Succeeded)
	assert.Zero(t, result.Notified)
}

func TestUpdateClientOperation(t *testing.T) {
	f := newFixture(t)
	f.mustCreateClient(t, "ACC00000001", "Acme Corp")

	result, err := f.orch.Execute(context.Background(), UpdateClient{
		Item: resource.ClientUpdate{
			AccountID:   "ACC00000001",
			Name:        "Acme Corporation",
			ProjectType: "modernizacion",
			Commitment:  "trimestral",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeComplete, result.Outcome)
	assert.Equal(t, "Cliente Acme Corporation actualizado correctamente", result.Message)
	require.NotNil(t, result.Client)
	assert.Equal(t, "Acme Corporation", result.Client.Name)
}

func TestUpdateClientNotFoundOutcome(t *testing.T) {
	f := newFixture(t)

	result, err := f.orch.Execute(context.Background(), UpdateClient{
		Item: resource.ClientUpdate{
			AccountID:   "ACC00000099",
			Name:        "Ghost",
			ProjectType: "migracion",
			Commitment:  "anual",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, result.Outcome)
	assert.Contains(t, result.Message, "no existe")
}

func TestUpdateWorkloadOperation(t *testing.T) {
	f := newFixture(t)
	f.mustCreateClient(t, "ACC00000001", "Acme Corp")

	created, err := f.orch.Execute(context.Background(), CreateWorkloads{
		Items: []resource.WorkloadInput{workloadItem("ACC00000001", "10-03-2025", "10-04-2025")},
	})
	require.NoError(t, err)
	w := created.Workloads[0].Workload

	result, err := f.orch.Execute(context.Background(), UpdateWorkload{
		Item: resource.WorkloadUpdate{
			ID:        w.ID,
			ClientID:  w.ClientID,
			Period:    w.Period,
			StartDate: w.StartDate,
			EndDate:   w.EndDate,
			SDM:       w.SDM,
			Status:    resource.StatusCompleted,
			Owner:     w.Owner,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeComplete, result.Outcome)
	assert.Equal(t, "Carga de trabajo actualizada correctamente", result.Message)
	require.NotNil(t, result.Mutation)
	assert.True(t, result.Mutation.Changes.Status)
}

func TestUpdateWorkloadValidationOutcome(t *testing.T) {
	f := newFixture(t)

	result, err := f.orch.Execute(context.Background(), UpdateWorkload{
		Item: resource.WorkloadUpdate{ID: "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, "Errores de validación", result.Message)
	require.Len(t, result.Errors, 1)
	assert.NotEmpty(t, result.Errors[0].Details)
}

func TestDeleteClientOperation(t *testing.T) {
	f := newFixture(t)
	f.mustCreateClient(t, "ACC00000001", "Acme Corp")

	result, err := f.orch.Execute(context.Background(), Delete{
		Request: resource.DeleteRequest{Type: resource.DeleteTypeClient, ID: "ACC00000001"},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeComplete, result.Outcome)
	require.NotNil(t, result.ClientDeletion)
	assert.Zero(t, f.backend.Len())
}

func TestDeleteWorkloadOperation(t *testing.T) {
	f := newFixture(t)
	f.mustCreateClient(t, "ACC00000001", "Acme Corp")

	created, err := f.orch.Execute(context.Background(), CreateWorkloads{
		Items: []resource.WorkloadInput{workloadItem("ACC00000001", "10-03-2025", "10-04-2025")},
	})
	require.NoError(t, err)
	w := created.Workloads[0].Workload

	result, err := f.orch.Execute(context.Background(), Delete{
		Request: resource.DeleteRequest{
			Type:     resource.DeleteTypeWorkload,
			ID:       w.ID,
			ClientID: w.ClientID,
			Year:     "2025",
			Month:    "03",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeComplete, result.Outcome)
	require.NotNil(t, result.WorkloadDeletion)
	assert.Equal(t, []string{"2025/03", "2025"}, result.WorkloadDeletion.CleanedPartitions)
	assert.Contains(t, result.Message, "el resumen del cliente se ha actualizado")
}

func TestDeleteWorkloadNotFoundOutcome(t *testing.T) {
	f := newFixture(t)
	f.mustCreateClient(t, "ACC00000001", "Acme Corp")

	result, err := f.orch.Execute(context.Background(), Delete{
		Request: resource.DeleteRequest{
			Type:     resource.DeleteTypeWorkload,
			ID:       "nope1234",
			ClientID: "ACC00000001",
			Year:     "2025",
			Month:    "03",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, result.Outcome)
}

func TestDeleteInvalidType(t *testing.T) {
	f := newFixture(t)

	result, err := f.orch.Execute(context.Background(), Delete{
		Request: resource.DeleteRequest{Type: "cuenta", ID: "ACC00000001"},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, "Errores de validación", result.Message)
}

func TestBatchProcessesInOrder(t *testing.T) {
	f := newFixture(t)
	f.mustCreateClient(t, "ACC00000001", "Acme Corp")

	result, err := f.orch.Execute(context.Background(), CreateWorkloads{
		Batch: true,
		Items: []resource.WorkloadInput{
			workloadItem("ACC00000001", "10-03-2025", "10-04-2025"),
			workloadItem("ACC00000001", "15-03-2025", "15-04-2025"),
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Workloads, 2)

	// Sequential processing: ids were handed out in request order.
	assert.Equal(t, "wl000001", result.Workloads[0].Workload.ID)
	assert.Equal(t, "wl000002", result.Workloads[1].Workload.ID)
}
