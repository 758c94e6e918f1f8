package batch

import (
	"github.com/c360/workplan/lifecycle"
	"github.com/c360/workplan/resource"
)

// Outcome classifies a result for the transport layer, which owns the
// mapping to protocol status codes.
type Outcome string

// Outcomes.
const (
	// OutcomeComplete: every item succeeded.
	OutcomeComplete Outcome = "completo"
	// OutcomePartial: some items succeeded, some failed.
	OutcomePartial Outcome = "parcial"
	// OutcomeFailed: nothing succeeded, including validation failures.
	OutcomeFailed Outcome = "fallido"
	// OutcomeNotFound: the referenced client or workload does not exist.
	OutcomeNotFound Outcome = "no_encontrado"
	// OutcomeConflict: a create collided with an existing client.
	OutcomeConflict Outcome = "conflicto"
)

// ItemError attributes one failed item to its position in the request.
type ItemError struct {
	Index     int      `json:"indice"`
	AccountID string   `json:"id_cuenta,omitempty"`
	ClientID  string   `json:"id_cliente,omitempty"`
	SDM       string   `json:"sdm,omitempty"`
	Reason    string   `json:"razon"`
	Details   []string `json:"detalle,omitempty"`
}

// Result is the uniform outcome of any operation. Counters cover the
// top-level items; the typed payload fields are set per operation kind.
type Result struct {
	Outcome   Outcome     `json:"resultado"`
	Message   string      `json:"mensaje"`
	Succeeded int         `json:"exitosos"`
	Failed    int         `json:"fallidos"`
	Notified  int         `json:"total_notificados,omitempty"`
	Errors    []ItemError `json:"errores,omitempty"`

	// Embedded workload counters for client creates.
	WorkloadsSucceeded int `json:"total_workloads_exitosos,omitempty"`
	WorkloadsFailed    int `json:"total_workloads_fallidos,omitempty"`

	Clients          []lifecycle.ClientCreation   `json:"clientes,omitempty"`
	Workloads        []lifecycle.WorkloadCreation `json:"workloads,omitempty"`
	Client           *resource.Client             `json:"cliente,omitempty"`
	Mutation         *lifecycle.WorkloadMutation  `json:"actualizacion,omitempty"`
	ClientDeletion   *lifecycle.ClientDeletion    `json:"eliminacion_cliente,omitempty"`
	WorkloadDeletion *lifecycle.WorkloadDeletion  `json:"eliminacion_workload,omitempty"`
}
