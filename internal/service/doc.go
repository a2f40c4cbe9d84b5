// Package service is the composition root behind the HTTP API. It validates
// incoming events and turns them into event publisher jobs, and it reports
// registry, journal and queue state. Files by concern:
//
//   - service.go: Service type, constructor, Publish and read-only queries.
//   - errors.go: error types and helpers (IsInvalidRequest, IsJournalDisabled).
//
// The gate decision itself runs later, inside the queue, as the handler of
// the published job (see package gate).
package service
