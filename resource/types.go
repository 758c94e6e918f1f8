// Package resource defines the persisted document types and the
// deterministic partition key scheme that maps them to object-store paths.
//
// JSON field names follow the original wire contract (Spanish), which the
// transport layer and stored documents both depend on; Go identifiers are
// the English equivalents.
package resource

import "time"

// Status is a workload lifecycle status. StatusNone is only ever a summary
// value, never a workload's own status.
type Status string

// Workload status values.
const (
	StatusNone       Status = "sin_workloads"
	StatusInProgress Status = "en_progreso"
	StatusCompleted  Status = "completado"
	StatusPaused     Status = "pausado"
	StatusCanceled   Status = "cancelado"
)

// WorkloadStatuses are the statuses a workload document may carry.
var WorkloadStatuses = []Status{StatusInProgress, StatusCompleted, StatusPaused, StatusCanceled}

// ValidWorkloadStatus reports whether s is an allowed workload status.
func ValidWorkloadStatus(s Status) bool {
	for _, v := range WorkloadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// NormalizeStatus maps unknown or missing status values to en_progreso,
// matching how the aggregator counts documents written by older versions.
func NormalizeStatus(s Status) Status {
	if ValidWorkloadStatus(s) {
		return s
	}
	return StatusInProgress
}

// NotificationState tracks whether the owner notification for a workload
// was delivered.
type NotificationState string

// Notification states.
const (
	NotificationPending NotificationState = "pendiente"
	NotificationSent    NotificationState = "enviada"
)

// Summary is the denormalized per-client rollup of its workloads. The client
// document is the only place it is persisted; it is maintained by delta on
// the create path and by full rescan everywhere else.
type Summary struct {
	CurrentStatus  Status   `json:"status_actual"`
	LastWorkloadID string   `json:"ultimoWorkloadId"`
	Total          int      `json:"totales"`
	InProgress     int      `json:"en_progreso"`
	Completed      int      `json:"completado"`
	Paused         int      `json:"pausado"`
	Canceled       int      `json:"cancelado"`
	Months         []string `json:"meses"`
	Years          []string `json:"años"`
}

// EmptySummary returns the summary of a client with no workloads. Months and
// Years are non-nil so they serialize as empty arrays, matching what readers
// of the client document expect.
func EmptySummary() Summary {
	return Summary{CurrentStatus: StatusNone, Months: []string{}, Years: []string{}}
}

// Add increments the counter for status.
func (s *Summary) Add(status Status) {
	s.Total++
	switch NormalizeStatus(status) {
	case StatusInProgress:
		s.InProgress++
	case StatusCompleted:
		s.Completed++
	case StatusPaused:
		s.Paused++
	case StatusCanceled:
		s.Canceled++
	}
}

// CountFor returns the counter for status.
func (s *Summary) CountFor(status Status) int {
	switch status {
	case StatusInProgress:
		return s.InProgress
	case StatusCompleted:
		return s.Completed
	case StatusPaused:
		return s.Paused
	case StatusCanceled:
		return s.Canceled
	default:
		return 0
	}
}

// Client is the account document stored at ClientKey(AccountID).
type Client struct {
	AccountID   string     `json:"id_cuenta"`
	Name        string     `json:"cliente"`
	ProjectType string     `json:"tipo_proyecto"`
	Commitment  string     `json:"compromiso"`
	Summary     Summary    `json:"workloads_resumen"`
	CreatedAt   time.Time  `json:"fecha_creacion"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Workload is the assignment document stored at
// WorkloadKey(ClientID, year, month, ID) where year and month derive from
// StartDate. Period is the redundant "YYYY-MM" copy of those coordinates.
type Workload struct {
	ID                string            `json:"id"`
	ClientID          string            `json:"id_cliente"`
	StartDate         string            `json:"fecha_inicio"` // DD-MM-YYYY
	EndDate           string            `json:"fecha_fin"`    // DD-MM-YYYY
	Period            string            `json:"periodo"`      // YYYY-MM
	SDM               string            `json:"sdm"`
	Status            Status            `json:"status"`
	Owner             string            `json:"responsable_email"`
	Notification      NotificationState `json:"notificacion"`
	NotificationError string            `json:"error_notificacion,omitempty"`
	CreatedAt         time.Time         `json:"fecha_creacion"`
	UpdatedAt         *time.Time        `json:"updated_at,omitempty"`
}
