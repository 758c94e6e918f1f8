package batch

import "github.com/c360/workplan/resource"

// Operation is a closed set of requests the orchestrator executes. The
// transport layer decodes its envelope into exactly one of these variants;
// nothing downstream ever re-inspects an operation code string.
type Operation interface {
	isOperation()
}

// CreateClients creates one or more clients, each optionally carrying
// embedded workloads. Batch marks whether the caller declared a batch, which
// changes result messages and the minimum item count the transport enforces.
type CreateClients struct {
	Items []resource.ClientInput
	Batch bool
}

// CreateWorkloads creates one or more workloads for existing clients.
type CreateWorkloads struct {
	Items []resource.WorkloadInput
	Batch bool
}

// UpdateClient replaces a client's editable fields.
type UpdateClient struct {
	Item resource.ClientUpdate
}

// UpdateWorkload replaces a workload located by its current partition.
type UpdateWorkload struct {
	Item resource.WorkloadUpdate
}

// Delete removes a client (with cascade) or a single workload.
type Delete struct {
	Request resource.DeleteRequest
}

func (CreateClients) isOperation()   {}
func (CreateWorkloads) isOperation() {}
func (UpdateClient) isOperation()    {}
func (UpdateWorkload) isOperation()  {}
func (Delete) isOperation()          {}
