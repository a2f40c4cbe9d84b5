package queue

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"eventgate/internal/jobs"
	"eventgate/pkg/types"
)

// memQueue is one named in-process queue.
type memQueue struct {
	name     string
	jobs     chan jobs.Job
	handlers map[jobs.Kind]jobs.Handler

	// queued counts jobs accepted but not yet picked up by a worker.
	queued    atomic.Int64
	inflight  atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	dead      atomic.Int64
}

// Broker is the in-process queue backend: one bounded channel per queue
// served by a fixed pool of workers.
type Broker struct {
	mu     sync.RWMutex
	queues map[string]*memQueue
	cfg    Config
	log    zerolog.Logger

	wg       sync.WaitGroup
	cancel   context.CancelFunc
	started  atomic.Bool
	closed   atomic.Bool
	stopped  atomic.Bool
	retrying atomic.Int64
	now      func() time.Time
}

// NewBroker constructs a Broker. Zero Config fields take package defaults.
func NewBroker(cfg Config, log zerolog.Logger) *Broker {
	return &Broker{
		queues: make(map[string]*memQueue),
		cfg:    cfg.withDefaults(),
		log:    log.With().Str("component", "queue").Logger(),
		now:    time.Now,
	}
}

// Handle registers the handler for a job kind on the kind's queue. It must be
// called before Start.
func (b *Broker) Handle(kind jobs.Kind, h jobs.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started.Load() {
		panic("queue: Handle called after Start")
	}
	name := kind.Queue()
	q := b.queues[name]
	if q == nil {
		q = &memQueue{
			name:     name,
			jobs:     make(chan jobs.Job, b.cfg.MaxDepth),
			handlers: make(map[jobs.Kind]jobs.Handler),
		}
		b.queues[name] = q
	}
	q.handlers[kind] = h
}

// Start launches the workers of every registered queue. Workers stop when ctx
// is canceled or Stop is called.
func (b *Broker) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started.CompareAndSwap(false, true) {
		return
	}
	wctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	for _, q := range b.queues {
		for i := 0; i < b.cfg.Workers; i++ {
			b.wg.Add(1)
			go b.work(wctx, q)
		}
		b.log.Info().Str("queue", q.name).Int("workers", b.cfg.Workers).Int("max_depth", b.cfg.MaxDepth).Msg("queue started")
	}
}

// Ready reports whether workers are running and the broker accepts jobs.
func (b *Broker) Ready() bool { return b.started.Load() && !b.closed.Load() }

// Stop rejects new jobs from outside the broker, waits for queued jobs and
// pending retries to drain, then stops the workers. Handlers may still enqueue
// follow-up jobs while draining. If ctx expires first the remaining jobs are
// dropped.
func (b *Broker) Stop(ctx context.Context) error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	if !b.started.Load() {
		return nil
	}
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	var err error
drain:
	for !b.drained() {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break drain
		case <-ticker.C:
		}
	}
	b.stopped.Store(true)
	b.cancel()
	b.wg.Wait()
	if err != nil {
		b.log.Warn().Int("dropped", b.pending()).Msg("queue stop deadline reached")
	}
	return err
}

func (b *Broker) drained() bool {
	if b.retrying.Load() > 0 {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, q := range b.queues {
		if q.queued.Load() > 0 || q.inflight.Load() > 0 {
			return false
		}
	}
	return true
}

func (b *Broker) pending() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := int(b.retrying.Load())
	for _, q := range b.queues {
		n += int(q.queued.Load())
	}
	return n
}

func (b *Broker) queue(name string) *memQueue {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.queues[name]
}

// Stats reports per-queue counters sorted by queue name.
func (b *Broker) Stats() []types.QueueStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]types.QueueStatus, 0, len(b.queues))
	for _, q := range b.queues {
		out = append(out, types.QueueStatus{
			Name:      q.name,
			Depth:     len(q.jobs),
			Capacity:  cap(q.jobs),
			Inflight:  q.inflight.Load(),
			Processed: q.processed.Load(),
			Failed:    q.failed.Load(),
			Dead:      q.dead.Load(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
