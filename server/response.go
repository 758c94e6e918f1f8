package server

import (
	"net/http"

	"github.com/c360/workplan/batch"
)

// Response is the uniform reply envelope. Status carries the HTTP-equivalent
// code so any edge in front of the bus can map it without re-inspecting the
// payload.
type Response struct {
	Success bool     `json:"success"`
	Partial bool     `json:"partial,omitempty"`
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func successResponse(status int, message string, data any) Response {
	return Response{Success: true, Status: status, Message: message, Data: data}
}

func errorResponse(status int, message string, errs []string) Response {
	return Response{Success: false, Status: status, Message: message, Errors: errs}
}

// operationResponse maps an executed operation's outcome to a reply.
// Failed results still carry the full result so callers get the per-item
// error entries, with the detail strings flattened alongside.
func operationResponse(op batch.Operation, result batch.Result) Response {
	switch result.Outcome {
	case batch.OutcomeComplete:
		status := http.StatusOK
		if isCreate(op) {
			status = http.StatusCreated
		}
		return successResponse(status, result.Message, result)

	case batch.OutcomePartial:
		return Response{
			Success: true,
			Partial: true,
			Status:  http.StatusMultiStatus,
			Message: result.Message,
			Data:    result,
		}

	case batch.OutcomeNotFound:
		return failedResponse(http.StatusNotFound, result)
	case batch.OutcomeConflict:
		return failedResponse(http.StatusConflict, result)
	default:
		return failedResponse(http.StatusBadRequest, result)
	}
}

func failedResponse(status int, result batch.Result) Response {
	resp := errorResponse(status, result.Message, flattenErrors(result.Errors))
	resp.Data = result
	return resp
}

func flattenErrors(errs []batch.ItemError) []string {
	var out []string
	for _, e := range errs {
		if len(e.Details) > 0 {
			out = append(out, e.Details...)
			continue
		}
		out = append(out, e.Reason)
	}
	return out
}

func isCreate(op batch.Operation) bool {
	switch op.(type) {
	case batch.CreateClients, batch.CreateWorkloads:
		return true
	}
	return false
}
