// Package batch executes operations against the lifecycle coordinator,
// treating a single item as a batch of one. Items are processed strictly in
// request order and isolated from each other: one failing item never stops
// the rest, and the result attributes every failure to its index.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360/workplan/errors"
	"github.com/c360/workplan/lifecycle"
	"github.com/c360/workplan/resource"
)

// Orchestrator runs operations through a Coordinator.
type Orchestrator struct {
	coord  *lifecycle.Coordinator
	logger *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// New creates an Orchestrator over coord.
func New(coord *lifecycle.Coordinator, opts ...Option) *Orchestrator {
	o := &Orchestrator{coord: coord, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs op and reports the aggregate result. It returns an error only
// for unknown operation variants; item failures are carried in the Result.
func (o *Orchestrator) Execute(ctx context.Context, op Operation) (Result, error) {
	switch v := op.(type) {
	case CreateClients:
		return o.createClients(ctx, v), nil
	case CreateWorkloads:
		return o.createWorkloads(ctx, v), nil
	case UpdateClient:
		return o.updateClient(ctx, v.Item), nil
	case UpdateWorkload:
		return o.updateWorkload(ctx, v.Item), nil
	case Delete:
		return o.delete(ctx, v.Request), nil
	default:
		return Result{}, fmt.Errorf("unknown operation type %T", op)
	}
}

func (o *Orchestrator) createClients(ctx context.Context, op CreateClients) Result {
	result := Result{}

	for i, item := range op.Items {
		creation, err := o.coord.CreateClient(ctx, item)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, clientItemError(i, item, err))
			o.logger.Warn("client item failed", "index", i, "account_id", item.AccountID, "error", err)
			continue
		}

		result.Succeeded++
		result.Clients = append(result.Clients, creation)
		result.WorkloadsSucceeded += len(creation.Workloads)
		result.WorkloadsFailed += len(creation.WorkloadFailures)
		result.Notified += creation.Notified
		for _, f := range creation.WorkloadFailures {
			result.Errors = append(result.Errors, ItemError{
				Index:     f.Index,
				AccountID: item.AccountID,
				SDM:       f.SDM,
				Reason:    f.Reason,
				Details:   []string{f.Detail},
			})
		}
	}

	result.Outcome = classify(result)
	result.Message = clientCreateMessage(op.Batch, result, len(op.Items))
	return result
}

func (o *Orchestrator) createWorkloads(ctx context.Context, op CreateWorkloads) Result {
	result := Result{}

	for i, item := range op.Items {
		creation, err := o.coord.CreateWorkload(ctx, item)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, workloadItemError(i, item, err))
			o.logger.Warn("workload item failed", "index", i, "client_id", item.ClientID, "error", err)
			continue
		}
		result.Succeeded++
		result.Workloads = append(result.Workloads, creation)
		if creation.Notified {
			result.Notified++
		}
	}

	result.Outcome = classify(result)
	result.Message = workloadCreateMessage(op.Batch, result, len(op.Items))
	return result
}

func (o *Orchestrator) updateClient(ctx context.Context, item resource.ClientUpdate) Result {
	client, err := o.coord.UpdateClient(ctx, item)
	if err != nil {
		return singleFailure(err, ItemError{
			AccountID: item.AccountID,
			Reason:    "Error actualizando cliente",
		}, "Error actualizando cliente")
	}
	return Result{
		Outcome:   OutcomeComplete,
		Message:   fmt.Sprintf("Cliente %s actualizado correctamente", client.Name),
		Succeeded: 1,
		Client:    &client,
	}
}

func (o *Orchestrator) updateWorkload(ctx context.Context, item resource.WorkloadUpdate) Result {
	mutation, err := o.coord.UpdateWorkload(ctx, item)
	if err != nil {
		return singleFailure(err, ItemError{
			ClientID: item.ClientID,
			Reason:   "Error actualizando carga de trabajo",
		}, "Error actualizando carga de trabajo")
	}
	return Result{
		Outcome:   OutcomeComplete,
		Message:   "Carga de trabajo actualizada correctamente",
		Succeeded: 1,
		Mutation:  &mutation,
	}
}

func (o *Orchestrator) delete(ctx context.Context, req resource.DeleteRequest) Result {
	switch req.Type {
	case resource.DeleteTypeWorkload:
		deletion, err := o.coord.DeleteWorkload(ctx, req)
		if err != nil {
			return singleFailure(err, ItemError{
				ClientID: req.ClientID,
				Reason:   "Error eliminando carga de trabajo",
			}, "Error eliminando carga de trabajo")
		}
		msg := "La carga de trabajo ha sido eliminada y el resumen del cliente se ha actualizado"
		if deletion.SummaryStale {
			msg = "Carga de trabajo eliminada, pero hubo un problema actualizando el resumen del cliente"
		}
		return Result{
			Outcome:          OutcomeComplete,
			Message:          msg,
			Succeeded:        1,
			WorkloadDeletion: &deletion,
		}

	default:
		// Client deletes and malformed requests both route through
		// DeleteClient-side validation.
		if violations := validateClientDelete(req); violations != nil {
			err := errors.NewValidation("batch", "delete", violations)
			return singleFailure(err, ItemError{Reason: "Error eliminando recurso"}, "Error eliminando recurso")
		}
		deletion, err := o.coord.DeleteClient(ctx, req.ID)
		if err != nil {
			return singleFailure(err, ItemError{
				AccountID: req.ID,
				Reason:    "Error eliminando cliente",
			}, "Error eliminando cliente")
		}
		msg := "El cliente ha sido eliminado correctamente"
		if deletion.RemovedObjects > 1 {
			msg = "El cliente y sus cargas de trabajo se han eliminado correctamente"
		}
		return Result{
			Outcome:        OutcomeComplete,
			Message:        msg,
			Succeeded:      1,
			ClientDeletion: &deletion,
		}
	}
}

// classify folds per-item outcomes into one. The single-failure kinds only
// surface when nothing succeeded; a partial batch is partial regardless of
// why individual items failed.
func classify(result Result) Outcome {
	switch {
	case result.Failed == 0 && result.WorkloadsFailed == 0:
		return OutcomeComplete
	case result.Succeeded > 0:
		return OutcomePartial
	default:
		return failureOutcome(result.Errors)
	}
}

func failureOutcome(errs []ItemError) Outcome {
	if len(errs) == 1 {
		switch errs[0].Reason {
		case reasonConflict:
			return OutcomeConflict
		case reasonClientMissing, reasonNotFound:
			return OutcomeNotFound
		}
	}
	return OutcomeFailed
}

// Reasons attached to item errors.
const (
	reasonValidation    = "Validación fallida"
	reasonConflict      = "Cliente ya existe"
	reasonClientMissing = "Cliente no existe"
	reasonNotFound      = "Recurso no encontrado"
)

func clientItemError(index int, item resource.ClientInput, err error) ItemError {
	ie := ItemError{Index: index, AccountID: item.AccountID}
	switch {
	case errors.IsValidation(err):
		ie.Reason = reasonValidation
		ie.Details = errors.ViolationsOf(err)
	case errors.IsConflict(err):
		ie.Reason = reasonConflict
		ie.Details = []string{errors.Detail(err)}
	default:
		ie.Reason = "Error creando cliente"
		ie.Details = []string{errors.Detail(err)}
	}
	return ie
}

func workloadItemError(index int, item resource.WorkloadInput, err error) ItemError {
	ie := ItemError{Index: index, ClientID: item.ClientID, SDM: item.SDM}
	switch {
	case errors.IsValidation(err):
		ie.Reason = reasonValidation
		ie.Details = errors.ViolationsOf(err)
	case errors.IsNotFound(err):
		ie.Reason = reasonClientMissing
		ie.Details = []string{errors.Detail(err)}
	default:
		ie.Reason = "Error guardando workload"
		ie.Details = []string{errors.Detail(err)}
	}
	return ie
}

// singleFailure builds the Result for a one-item operation that failed.
func singleFailure(err error, ie ItemError, fallbackMsg string) Result {
	var outcome Outcome
	var msg string
	switch {
	case errors.IsValidation(err):
		outcome = OutcomeFailed
		ie.Reason = reasonValidation
		ie.Details = errors.ViolationsOf(err)
		msg = "Errores de validación"
	case errors.IsNotFound(err):
		outcome = OutcomeNotFound
		ie.Reason = reasonNotFound
		ie.Details = []string{errors.Detail(err)}
		msg = errors.Detail(err)
	case errors.IsConflict(err):
		outcome = OutcomeConflict
		ie.Details = []string{errors.Detail(err)}
		msg = errors.Detail(err)
	default:
		outcome = OutcomeFailed
		ie.Details = []string{errors.Detail(err)}
		msg = fallbackMsg
	}
	return Result{
		Outcome: outcome,
		Message: msg,
		Failed:  1,
		Errors:  []ItemError{ie},
	}
}

func validateClientDelete(req resource.DeleteRequest) []string {
	var violations []string
	if req.Type != resource.DeleteTypeClient {
		violations = append(violations, fmt.Sprintf("tipo: debe ser uno de [%s, %s]",
			resource.DeleteTypeClient, resource.DeleteTypeWorkload))
	}
	if req.ID == "" {
		violations = append(violations, "id: campo requerido")
	}
	return violations
}

func clientCreateMessage(isBatch bool, r Result, total int) string {
	if isBatch {
		switch {
		case r.Failed == 0 && r.WorkloadsFailed == 0:
			return fmt.Sprintf("%d clientes creados correctamente con %d cargas de trabajo",
				r.Succeeded, r.WorkloadsSucceeded)
		case r.Succeeded == 0:
			return "No se pudo crear ningún cliente"
		default:
			msg := fmt.Sprintf("%d clientes creados", r.Succeeded)
			if r.Failed > 0 {
				msg += fmt.Sprintf(", %d fallaron", r.Failed)
			}
			if r.WorkloadsFailed > 0 {
				msg += fmt.Sprintf(", %d cargas de trabajo fallaron", r.WorkloadsFailed)
			}
			return msg
		}
	}
	switch {
	case r.Failed == 0 && r.WorkloadsFailed == 0:
		return "Cliente creado correctamente"
	case r.Failed > 0:
		return "Error creando cliente"
	default:
		return fmt.Sprintf("Cliente creado, pero %d cargas de trabajo fallaron", r.WorkloadsFailed)
	}
}

func workloadCreateMessage(isBatch bool, r Result, total int) string {
	if isBatch {
		switch {
		case r.Failed == 0 && r.Notified == total:
			return "Todas las cargas fueron creadas y notificadas correctamente"
		case r.Failed == 0:
			return fmt.Sprintf("Cargas creadas (%d de %d notificaciones enviadas)", r.Notified, total)
		case r.Succeeded > 0:
			created := "cargas creadas"
			if r.Succeeded == 1 {
				created = "carga creada"
			}
			failed := "fallaron"
			if r.Failed == 1 {
				failed = "falló"
			}
			return fmt.Sprintf("%d %s, %d %s", r.Succeeded, created, r.Failed, failed)
		default:
			return "No se pudo crear ninguna carga de trabajo"
		}
	}
	switch {
	case r.Failed > 0:
		return "Error creando carga de trabajo"
	case r.Notified == 1:
		return "Carga de trabajo creada y notificada correctamente"
	default:
		return "Carga de trabajo creada, pero no se pudo enviar notificación"
	}
}
