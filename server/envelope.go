package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/c360/workplan/batch"
	"github.com/c360/workplan/resource"
)

// Operation codes accepted on the operations subject.
const (
	OpClientCreate   = "CLI_I"
	OpClientBatch    = "CLI_L"
	OpClientUpdate   = "CLI_U"
	OpWorkloadCreate = "WL_I"
	OpWorkloadBatch  = "WL_L"
	OpWorkloadUpdate = "WL_U"
	OpDelete         = "DEL"
)

var operationCodes = []string{
	OpClientCreate, OpClientBatch, OpClientUpdate,
	OpWorkloadCreate, OpWorkloadBatch, OpWorkloadUpdate,
	OpDelete,
}

// Envelope is the wire shape of every request on the operations subject.
// Content stays raw until the operation code determines its type.
type Envelope struct {
	Operation string          `json:"operacion"`
	Content   json.RawMessage `json:"contenido"`
}

// DecodeOperation validates the envelope structure and decodes the content
// into the closed operation type. Violations are user-facing strings; an
// operation is only returned when there are none.
func DecodeOperation(env Envelope) (batch.Operation, []string) {
	if env.Operation == "" {
		return nil, []string{"operacion: campo requerido"}
	}
	if !validOperation(env.Operation) {
		return nil, []string{fmt.Sprintf("operacion: '%s' no es válida. Debe ser una de: %s",
			env.Operation, strings.Join(operationCodes, ", "))}
	}

	content := bytes.TrimSpace(env.Content)
	if len(content) == 0 || bytes.Equal(content, []byte("null")) {
		return nil, []string{"contenido: campo requerido"}
	}

	isArray := content[0] == '['
	isBatch := env.Operation == OpClientBatch || env.Operation == OpWorkloadBatch
	if isBatch && !isArray {
		return nil, []string{fmt.Sprintf("contenido: debe ser un array para operación en lote (%s)", env.Operation)}
	}
	if !isBatch && isArray {
		return nil, []string{fmt.Sprintf("contenido: debe ser un objeto para operación individual (%s)", env.Operation)}
	}

	switch env.Operation {
	case OpClientCreate:
		var item resource.ClientInput
		if err := json.Unmarshal(content, &item); err != nil {
			return nil, []string{badContent()}
		}
		return batch.CreateClients{Items: []resource.ClientInput{item}}, nil

	case OpClientBatch:
		var items []resource.ClientInput
		if err := json.Unmarshal(content, &items); err != nil {
			return nil, []string{badContent()}
		}
		if msg := batchSize(env.Operation, len(items)); msg != "" {
			return nil, []string{msg}
		}
		return batch.CreateClients{Items: items, Batch: true}, nil

	case OpWorkloadCreate:
		var item resource.WorkloadInput
		if err := json.Unmarshal(content, &item); err != nil {
			return nil, []string{badContent()}
		}
		return batch.CreateWorkloads{Items: []resource.WorkloadInput{item}}, nil

	case OpWorkloadBatch:
		var items []resource.WorkloadInput
		if err := json.Unmarshal(content, &items); err != nil {
			return nil, []string{badContent()}
		}
		if msg := batchSize(env.Operation, len(items)); msg != "" {
			return nil, []string{msg}
		}
		return batch.CreateWorkloads{Items: items, Batch: true}, nil

	case OpClientUpdate:
		var item resource.ClientUpdate
		if err := json.Unmarshal(content, &item); err != nil {
			return nil, []string{badContent()}
		}
		return batch.UpdateClient{Item: item}, nil

	case OpWorkloadUpdate:
		var item resource.WorkloadUpdate
		if err := json.Unmarshal(content, &item); err != nil {
			return nil, []string{badContent()}
		}
		return batch.UpdateWorkload{Item: item}, nil

	case OpDelete:
		var req resource.DeleteRequest
		if err := json.Unmarshal(content, &req); err != nil {
			return nil, []string{badContent()}
		}
		return batch.Delete{Request: req}, nil
	}

	return nil, []string{badContent()}
}

func validOperation(op string) bool {
	for _, code := range operationCodes {
		if op == code {
			return true
		}
	}
	return false
}

// batchSize enforces the minimum item count of the batch operations. A
// single item must go through the individual code instead.
func batchSize(op string, n int) string {
	if n == 0 {
		return "contenido: el array no puede estar vacío"
	}
	if n >= 2 {
		return ""
	}
	if op == OpClientBatch {
		return "contenido: debe tener al menos 2 clientes para operación en lote (CLI_L). Para 1 cliente usa CLI_I"
	}
	return "contenido: debe tener al menos 2 cargas de trabajo para operación en lote (WL_L). Para 1 carga usa WL_I"
}

func badContent() string {
	return "contenido: formato inválido"
}
