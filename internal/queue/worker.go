package queue

import (
	"context"
	"fmt"
	"time"

	"eventgate/internal/jobs"
)

func (b *Broker) work(ctx context.Context, q *memQueue) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			queueDepth.WithLabelValues(q.name).Set(float64(len(q.jobs)))
			b.run(ctx, q, job)
		}
	}
}

func (b *Broker) run(ctx context.Context, q *memQueue, job jobs.Job) {
	q.inflight.Add(1)
	q.queued.Add(-1)
	defer q.inflight.Add(-1)

	start := time.Now()
	err := safeHandle(withWorker(ctx), q.handlers[job.Kind], job)
	jobDuration.WithLabelValues(q.name, string(job.Kind)).Observe(time.Since(start).Seconds())
	if err == nil {
		q.processed.Add(1)
		jobsHandledTotal.WithLabelValues(q.name, string(job.Kind), "success").Inc()
		return
	}
	q.failed.Add(1)
	jobsHandledTotal.WithLabelValues(q.name, string(job.Kind), "error").Inc()

	if job.Attempt+1 >= b.cfg.MaxAttempts || jobs.IsPermanent(err) {
		q.dead.Add(1)
		jobsHandledTotal.WithLabelValues(q.name, string(job.Kind), "dead").Inc()
		b.log.Error().Err(err).Str("queue", q.name).Str("job_id", job.ID).Str("kind", string(job.Kind)).
			Int("attempts", job.Attempt+1).Msg("job failed permanently")
		return
	}
	job.Attempt++
	delay := b.cfg.backoff(job.Attempt)
	b.log.Warn().Err(err).Str("queue", q.name).Str("job_id", job.ID).Int("attempt", job.Attempt).
		Dur("retry_in", delay).Msg("job failed, retrying")
	b.retry(ctx, q, job, delay)
}

// retry re-enqueues job after delay. Retries bypass the closed check so
// in-flight work still drains during Stop.
func (b *Broker) retry(ctx context.Context, q *memQueue, job jobs.Job, delay time.Duration) {
	b.retrying.Add(1)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.retrying.Add(-1)
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			q.dead.Add(1)
			return
		case <-t.C:
		}
		if err := b.push(ctx, q, job); err != nil {
			q.dead.Add(1)
			jobsHandledTotal.WithLabelValues(q.name, string(job.Kind), "dead").Inc()
			b.log.Error().Err(err).Str("queue", q.name).Str("job_id", job.ID).Msg("job retry dropped")
		}
	}()
}

// safeHandle converts handler panics into errors so a bad job cannot kill a
// worker.
func safeHandle(ctx context.Context, h jobs.Handler, job jobs.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job handler panic: %v", r)
		}
	}()
	return h(ctx, job)
}
