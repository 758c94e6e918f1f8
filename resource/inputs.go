package resource

// Input payloads carried by the transport envelope. These are what callers
// send; the persisted documents in types.go are what the lifecycle
// coordinator derives from them.

// ClientInput is the payload for creating a client, optionally with
// embedded workloads.
type ClientInput struct {
	AccountID   string          `json:"id_cuenta"`
	Name        string          `json:"cliente"`
	ProjectType string          `json:"tipo_proyecto"`
	Commitment  string          `json:"compromiso"`
	Workloads   []WorkloadInput `json:"workloads,omitempty"`
}

// WorkloadInput is the payload for creating a workload. ClientID is required
// for standalone creates and ignored when the workload is embedded in a
// ClientInput.
type WorkloadInput struct {
	ClientID  string `json:"id_cliente,omitempty"`
	StartDate string `json:"fecha_inicio"`
	EndDate   string `json:"fecha_fin"`
	SDM       string `json:"sdm"`
	Status    Status `json:"status"`
	Owner     string `json:"responsable_email"`
}

// ClientUpdate is the payload for updating a client's editable fields.
// The summary and creation timestamp are never caller-supplied.
type ClientUpdate struct {
	AccountID   string `json:"id_cuenta"`
	Name        string `json:"cliente"`
	ProjectType string `json:"tipo_proyecto"`
	Commitment  string `json:"compromiso"`
}

// WorkloadUpdate is the payload for updating a workload. Period declares
// where the document currently lives; the new partition derives from
// StartDate.
type WorkloadUpdate struct {
	ID        string `json:"id"`
	ClientID  string `json:"id_cliente"`
	Period    string `json:"periodo"` // YYYY-MM, current location
	StartDate string `json:"fecha_inicio"`
	EndDate   string `json:"fecha_fin"`
	SDM       string `json:"sdm"`
	Status    Status `json:"status"`
	Owner     string `json:"responsable_email"`
}

// Delete target types.
const (
	DeleteTypeClient   = "cliente"
	DeleteTypeWorkload = "workload"
)

// DeleteRequest identifies a client or a workload to remove. Workload
// deletes must supply the exact partition coordinates; the engine never
// searches for a workload by id alone.
type DeleteRequest struct {
	Type     string `json:"tipo"` // cliente | workload
	ID       string `json:"id"`
	ClientID string `json:"id_cliente,omitempty"`
	Year     string `json:"year,omitempty"`
	Month    string `json:"month,omitempty"`
}
