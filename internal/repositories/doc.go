// Package repositories implements SQLite persistence for domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [CommitRepository] : Journal of story commits, one record per attempt with its final status
//
// Sequence numbers provide stable, human-readable ordering (e.g., commit #42) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
