package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"eventgate/internal/jobs"
)

// Enqueue submits a job to its queue. It waits up to MaxWait for a free slot
// and fails with a too-busy error afterwards.
func (b *Broker) Enqueue(ctx context.Context, job jobs.Job) error {
	if b.stopped.Load() || (b.closed.Load() && !fromWorker(ctx)) {
		return ErrClosed
	}
	q := b.queue(job.Queue())
	if q == nil {
		return unknownQueueError{queue: job.Queue(), kind: string(job.Kind)}
	}
	if _, ok := q.handlers[job.Kind]; !ok {
		return unknownQueueError{queue: q.name, kind: string(job.Kind)}
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = b.now().UTC()
	}
	if err := b.push(ctx, q, job); err != nil {
		return err
	}
	jobsEnqueuedTotal.WithLabelValues(q.name, string(job.Kind)).Inc()
	return nil
}

type workerKey struct{}

// withWorker marks ctx as belonging to a job handler run by this broker.
func withWorker(ctx context.Context) context.Context {
	return context.WithValue(ctx, workerKey{}, true)
}

func fromWorker(ctx context.Context) bool {
	v, _ := ctx.Value(workerKey{}).(bool)
	return v
}

// push places a job on q, honoring ctx and MaxWait.
func (b *Broker) push(ctx context.Context, q *memQueue, job jobs.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.queued.Add(1)
	select {
	case q.jobs <- job:
		queueDepth.WithLabelValues(q.name).Set(float64(len(q.jobs)))
		return nil
	default:
	}
	timer := time.NewTimer(b.cfg.MaxWait)
	defer timer.Stop()
	select {
	case q.jobs <- job:
		queueDepth.WithLabelValues(q.name).Set(float64(len(q.jobs)))
		return nil
	case <-ctx.Done():
		q.queued.Add(-1)
		return ctx.Err()
	case <-timer.C:
		q.queued.Add(-1)
		backpressureTotal.WithLabelValues(q.name).Inc()
		return tooBusyError{queue: q.name}
	}
}
