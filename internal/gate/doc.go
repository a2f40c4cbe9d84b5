// Package gate decides whether a published domain event is delivered and to
// which downstream generators it is routed.
//
//   - gate.go: Gate, Dispatch and the event publisher job handler.
//   - events.go: lifecycle events emitted for each decision (EventPublisher).
//   - eventpub_memory.go: in-memory EventPublisher for tests.
//   - errors.go: sentinel errors.
//   - metrics.go: Prometheus counters for decisions and routing.
//
// A decision suppresses the event when the resource, its component or its
// participatory space is unpublished, unless the publisher forces delivery.
// Otherwise one job is enqueued per channel the event class declares.
package gate
