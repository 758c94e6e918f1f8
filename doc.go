// Package workplan is a resource lifecycle engine for client accounts and
// time-bounded workloads persisted as JSON documents in a hierarchical object
// store.
//
// The object store provides prefix listing but no transactions and no
// secondary indexes, so every cross-document invariant (a client's
// denormalized workload summary, the year/month partition a workload lives
// under) is maintained in application logic:
//
//   - resource: document types and the deterministic partition key scheme
//   - validate: structural and date business-rule validation
//   - docstore: typed CRUD primitives over a pluggable storage.Store
//   - summary: full-rescan summary aggregation and create-path deltas
//   - partition: lazy marker creation and empty-prefix reclamation
//   - lifecycle: the per-entity create/update/delete coordinator
//   - batch: operation dispatch with per-item failure isolation
//   - notify: best-effort assignment and cancellation notices
//   - report: read-side rollups and listings
//   - server: NATS request/reply transport surface
//
// Storage backends live under storage/ (NATS JetStream ObjectStore for
// production, an in-memory store for tests). Supporting infrastructure
// follows the usual layout: errors (classified error kinds), metric
// (prometheus registry), natsclient, config, pkg/retry and pkg/worker.
// The entry point is cmd/workplan.
//
// # Consistency model
//
// The store offers read-after-write consistency for the originating writer
// and nothing stronger across writers. The client summary is therefore
// last-writer-wins: a recompute racing a concurrent write to the same client
// may overwrite it, and the next recompute converges. Cross-client
// operations are fully independent.
package workplan
