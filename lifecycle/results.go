package lifecycle

import "github.com/c360/workplan/resource"

// WorkloadCreation reports one stored workload and whether its assignment
// notification went out.
type WorkloadCreation struct {
	Workload resource.Workload `json:"workload"`
	Notified bool              `json:"notificado"`
}

// EmbeddedFailure records one embedded workload that could not be stored
// while its parent client succeeded.
type EmbeddedFailure struct {
	Index  int    `json:"workload_index"`
	SDM    string `json:"sdm"`
	Reason string `json:"razon"`
	Detail string `json:"detalle"`
}

// ClientCreation reports a stored client plus the outcome of its embedded
// workloads.
type ClientCreation struct {
	Client           resource.Client    `json:"cliente"`
	Workloads        []WorkloadCreation `json:"workloads"`
	WorkloadFailures []EmbeddedFailure  `json:"errores_workloads,omitempty"`
	Notified         int                `json:"notificados"`
}

// Changes flags which watched fields an update touched.
type Changes struct {
	Owner  bool `json:"responsable"`
	Status bool `json:"status"`
	Date   bool `json:"fecha"`
}

// OwnerChange carries the two parties of a reassignment.
type OwnerChange struct {
	Canceled string `json:"cancelado"`
	Assigned string `json:"asignado"`
}

// WorkloadMutation reports an updated workload, what changed, and whether
// the summary rescan that the change triggered went through.
type WorkloadMutation struct {
	Workload         resource.Workload `json:"workload"`
	Changes          Changes           `json:"cambios"`
	OwnerChange      *OwnerChange      `json:"notificaciones,omitempty"`
	SummaryRefreshed bool              `json:"resumen_actualizado"`
}

// ClientDeletion reports a removed client and how many workload objects,
// markers included, went with it.
type ClientDeletion struct {
	AccountID      string `json:"cliente_id"`
	RemovedObjects int    `json:"cargas_eliminadas"`
}

// WorkloadDeletion reports a removed workload, the partitions cleaned up
// behind it, and the state of the client summary afterwards. SummaryStale
// marks the case where the delete succeeded but the rescan did not.
type WorkloadDeletion struct {
	WorkloadID        string           `json:"workload_id"`
	AccountID         string           `json:"cliente_id"`
	CleanedPartitions []string         `json:"carpetas_limpiadas"`
	Summary           resource.Summary `json:"resumen,omitempty"`
	SummaryStale      bool             `json:"resumen_desactualizado"`
}
