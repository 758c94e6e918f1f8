package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/workplan/batch"
	"github.com/c360/workplan/docstore"
	"github.com/c360/workplan/lifecycle"
	"github.com/c360/workplan/notify"
	"github.com/c360/workplan/partition"
	"github.com/c360/workplan/pkg/retry"
	"github.com/c360/workplan/report"
	"github.com/c360/workplan/storage/memstore"
	"github.com/c360/workplan/summary"
	"github.com/c360/workplan/validate"
)

type fixture struct {
	srv     *Server
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
	clock := func() time.Time { return now }

	seq := 0
	coord := lifecycle.New(lifecycle.Deps{
		Docs:       docs,
		Partitions: partition.New(docs),
		Summaries:  summary.New(docs),
		Notifier:   notify.NewService(sender),
	},
		lifecycle.WithClock(clock),
		lifecycle.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("wl%06d", seq)
		}),
		lifecycle.WithValidator(&validate.Validator{MinYear: 2024, Now: clock}),
	)

	srv := New(nil, batch.New(coord), report.New(docs, report.WithClock(clock)),
		Config{}, WithClock(clock))
	return &fixture{srv: srv, docs: docs, backend: backend, sender: sender}
}

func (f *fixture) mustExecute(t *testing.T, payload string, wantStatus int) Response {
	t.Helper()
	resp := f.srv.HandleOperation(context.Background(), []byte(payload))
	require.Equal(t, wantStatus, resp.Status, "message: %s errors: %v", resp.Message, resp.Errors)
	return resp
}

const clientPayload = `{
	"operacion": "CLI_I",
	"contenido": {
		"id_cuenta": "ACC00000001",
		"cliente": "Acme Corp",
		"tipo_proyecto": "migracion",
		"compromiso": "anual"
	}
}`

const workloadPayload = `{
	"operacion": "WL_I",
	"contenido": {
		"id_cliente": "ACC00000001",
		"fecha_inicio": "10-03-2025",
		"fecha_fin": "10-04-2025",
		"sdm": "Jane Roe",
		"status": "en_progreso",
		"responsable_email": "lead@example.com"
	}
}`

func TestHandleOperationCreatesClient(t *testing.T) {
	f := newFixture(t)

	resp := f.mustExecute(t, clientPayload, 201)
	assert.True(t, resp.Success)
	assert.False(t, resp.Partial)

	result, ok := resp.Data.(batch.Result)
	require.True(t, ok)
	assert.Equal(t, batch.OutcomeComplete, result.Outcome)
	assert.Equal(t, 1, result.Succeeded)

	stored, err := f.backend.Exists(context.Background(), "clients/ACC00000001.json")
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestHandleOperationMalformedPayload(t *testing.T) {
	f := newFixture(t)

	resp := f.srv.HandleOperation(context.Background(), []byte(`{not json`))
	assert.Equal(t, 400, resp.Status)
	assert.False(t, resp.Success)
	assert.Equal(t, "Validación fallida", resp.Message)
	assert.Equal(t, []string{"payload: debe ser un JSON válido"}, resp.Errors)
}

func TestHandleOperationEnvelopeViolation(t *testing.T) {
	f := newFixture(t)

	resp := f.srv.HandleOperation(context.Background(), []byte(`{"contenido": {}}`))
	assert.Equal(t, 400, resp.Status)
	assert.Equal(t, []string{"operacion: campo requerido"}, resp.Errors)
}

func TestHandleOperationConflict(t *testing.T) {
	f := newFixture(t)

	f.mustExecute(t, clientPayload, 201)
	resp := f.mustExecute(t, clientPayload, 409)

	assert.False(t, resp.Success)
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0], "ya existe")

	result, ok := resp.Data.(batch.Result)
	require.True(t, ok)
	assert.Equal(t, batch.OutcomeConflict, result.Outcome)
}

func TestHandleOperationValidationFailure(t *testing.T) {
	f := newFixture(t)

	resp := f.mustExecute(t, `{"operacion": "CLI_I", "contenido": {}}`, 400)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Errors, "id_cuenta: campo requerido")
	assert.Contains(t, resp.Errors, "cliente: campo requerido")
}

func TestHandleOperationPartialBatch(t *testing.T) {
	f := newFixture(t)

	resp := f.mustExecute(t, `{
		"operacion": "CLI_L",
		"contenido": [
			{"id_cuenta": "ACC00000001", "cliente": "Acme Corp", "tipo_proyecto": "migracion", "compromiso": "anual"},
			{"id_cuenta": "short", "cliente": "Globex", "tipo_proyecto": "modernizacion", "compromiso": "anual"}
		]
	}`, 207)

	assert.True(t, resp.Success)
	assert.True(t, resp.Partial)

	result, ok := resp.Data.(batch.Result)
	require.True(t, ok)
	assert.Equal(t, batch.OutcomePartial, result.Outcome)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
}

func TestHandleOperationUpdateReturns200(t *testing.T) {
	f := newFixture(t)
	f.mustExecute(t, clientPayload, 201)

	resp := f.mustExecute(t, `{
		"operacion": "CLI_U",
		"contenido": {
			"id_cuenta": "ACC00000001",
			"cliente": "Acme Corporation",
			"tipo_proyecto": "migracion",
			"compromiso": "mensual"
		}
	}`, 200)
	assert.True(t, resp.Success)
}

func TestHandleOperationDeleteNotFound(t *testing.T) {
	f := newFixture(t)

	resp := f.mustExecute(t, `{
		"operacion": "DEL",
		"contenido": {"tipo": "cliente", "id": "ACC00000009"}
	}`, 404)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Errors[0], "no existe")
}

func TestHandleAnalysis(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := f.srv.HandleAnalysis(ctx, []byte(`{}`))
	assert.Equal(t, 400, resp.Status)
	assert.Equal(t, "Parámetro requerido", resp.Message)
	assert.Equal(t, []string{"El id del cliente es obligatorio"}, resp.Errors)

	f.mustExecute(t, clientPayload, 201)
	f.mustExecute(t, workloadPayload, 201)

	resp = f.srv.HandleAnalysis(ctx, []byte(`{"id_cliente": "ACC00000001"}`))
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, "Análisis completado exitosamente", resp.Message)

	analysis, ok := resp.Data.(report.Analysis)
	require.True(t, ok)
	assert.Equal(t, []string{"2025"}, analysis.Years)
	assert.Equal(t, 1, analysis.ByYear["2025"].Total)
}

func TestHandleReportValidations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
		message string
		detail  string
	}{
		{
			name:    "missing client",
			payload: `{}`,
			message: "Parámetro requerido",
			detail:  "El parámetro id_cliente es obligatorio",
		},
		{
			name:    "missing year",
			payload: `{"id_cliente": "ACC00000001"}`,
			message: "Parámetro requerido",
			detail:  "El parámetro año es obligatorio",
		},
		{
			name:    "unknown scope",
			payload: `{"id_cliente": "ACC00000001", "año": "2025", "tipoReporte": "semanal"}`,
			message: "Parámetro inválido",
			detail:  `tipoReporte debe ser "anual" o "mensual"`,
		},
		{
			name:    "monthly without month",
			payload: `{"id_cliente": "ACC00000001", "año": "2025", "tipoReporte": "mensual"}`,
			message: "Parámetro requerido",
			detail:  "El parámetro mes es obligatorio para reportes mensuales",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.srv.HandleReport(ctx, []byte(tt.payload))
			assert.Equal(t, 400, resp.Status)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, []string{tt.detail}, resp.Errors)
		})
	}
}

func TestHandleReportGeneratesAnnual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustExecute(t, clientPayload, 201)
	f.mustExecute(t, workloadPayload, 201)

	resp := f.srv.HandleReport(ctx, []byte(`{"id_cliente": "ACC00000001", "año": "2025"}`))
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, "Reporte generado exitosamente", resp.Message)

	rep, ok := resp.Data.(report.Report)
	require.True(t, ok)
	assert.Equal(t, report.ScopeAnnual, rep.Scope)
	assert.Equal(t, 1, rep.Total)
	assert.Equal(t, 1, rep.InProgress)
}

func TestHandleClients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := f.srv.HandleClients(ctx, nil)
	require.Equal(t, 200, resp.Status)
	list, ok := resp.Data.(clientList)
	require.True(t, ok)
	assert.Empty(t, list.Clients)

	f.mustExecute(t, clientPayload, 201)

	resp = f.srv.HandleClients(ctx, []byte(`{"id": "ACC00000001"}`))
	require.Equal(t, 200, resp.Status)
	list, ok = resp.Data.(clientList)
	require.True(t, ok)
	require.Len(t, list.Clients, 1)
	assert.Equal(t, "Acme Corp", list.Clients[0].Name)

	resp = f.srv.HandleClients(ctx, []byte(`{"id": "ACC00000009"}`))
	assert.Equal(t, 404, resp.Status)
	assert.Equal(t, "No encontrado", resp.Message)
	assert.Contains(t, resp.Errors[0], "no encontrado")
}

func TestHandleWorkloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := f.srv.HandleWorkloads(ctx, []byte(`{}`))
	assert.Equal(t, 400, resp.Status)
	assert.Equal(t, "ID de cliente requerido", resp.Message)

	f.mustExecute(t, clientPayload, 201)

	resp = f.srv.HandleWorkloads(ctx, []byte(`{"id_cliente": "ACC00000001"}`))
	require.Equal(t, 200, resp.Status)
	list, ok := resp.Data.(workloadList)
	require.True(t, ok)
	assert.Empty(t, list.Workloads)
	assert.Contains(t, list.Message, "no tiene cargas de trabajo registradas")

	f.mustExecute(t, workloadPayload, 201)

	resp = f.srv.HandleWorkloads(ctx, []byte(`{"id_cliente": "ACC00000001"}`))
	require.Equal(t, 200, resp.Status)
	list, ok = resp.Data.(workloadList)
	require.True(t, ok)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "2025", list.Year)
	assert.Equal(t, []string{"2025"}, list.AvailableYears)
}

func TestHandleWorkloadsFindsByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustExecute(t, clientPayload, 201)
	f.mustExecute(t, workloadPayload, 201)

	resp := f.srv.HandleWorkloads(ctx, []byte(`{"id_cliente": "ACC00000001", "workloadId": "wl000001"}`))
	require.Equal(t, 200, resp.Status)
	detail, ok := resp.Data.(workloadDetail)
	require.True(t, ok)
	assert.Equal(t, "wl000001", detail.Workload.ID)
	assert.Equal(t, "2025", detail.Year)

	resp = f.srv.HandleWorkloads(ctx, []byte(`{"id_cliente": "ACC00000001", "workloadId": "wl000009"}`))
	assert.Equal(t, 404, resp.Status)
}
