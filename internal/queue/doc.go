// Package queue provides the job-queue backends the dispatch gate runs on and
// submits to. It is structured into small files by concern:
//
//   - config.go: Config and package defaults; withDefaults applies them.
//   - errors.go: error types and helpers (IsTooBusy, IsUnknownQueue, IsClosed).
//   - broker.go: in-process Broker, handler registration, Start/Stop, Stats.
//   - admission.go: bounded enqueue with max-wait backpressure.
//   - worker.go: worker loop, panic recovery, retries with linear backoff.
//   - metrics.go: Prometheus collectors shared by both backends.
//   - kafka.go: Kafka producer (Enqueuer) and consumer-group runner.
//
// Delivery is at-least-once in both backends: a job whose handler fails is
// retried until MaxAttempts is reached, then dropped and counted as dead.
package queue
