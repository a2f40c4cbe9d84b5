package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"eventgate/internal/jobs"
	"eventgate/pkg/resource"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	w.msgs = append(w.msgs, msgs...)
	w.mu.Unlock()
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	for {
		r.mu.Lock()
		if len(r.pending) > 0 {
			m := r.pending[0]
			r.pending = r.pending[1:]
			r.mu.Unlock()
			return m, nil
		}
		r.mu.Unlock()
		select {
		case <-ctx.Done():
			return kafka.Message{}, ctx.Err()
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func encodeJob(t *testing.T, j jobs.Job) []byte {
	t.Helper()
	b, err := json.Marshal(j)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestKafkaProducer_WritesToQueueTopic(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{cfg: KafkaConfig{TopicPrefix: "eventgate."}, w: w, now: time.Now}
	job := jobs.Job{
		Kind:      jobs.KindEmailNotificationGenerator,
		EventName: "ev",
		Resource:  &resource.Resource{Type: "proposal", ID: "7"},
	}
	if err := p.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	m := w.msgs[0]
	if m.Topic != "eventgate.mailers" {
		t.Fatalf("topic=%q", m.Topic)
	}
	if string(m.Key) != "resource:proposal:7" {
		t.Fatalf("key=%q", m.Key)
	}
	var got jobs.Job
	if err := json.Unmarshal(m.Value, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID == "" || got.EnqueuedAt.IsZero() || got.EventName != "ev" {
		t.Fatalf("unexpected job: %+v", got)
	}
	if len(m.Headers) != 2 || m.Headers[0].Key != "kind" || string(m.Headers[0].Value) != string(jobs.KindEmailNotificationGenerator) {
		t.Fatalf("headers=%+v", m.Headers)
	}
}

func TestKafkaProducer_WriteErrorWrapped(t *testing.T) {
	sentinel := errors.New("leader not available")
	p := &KafkaProducer{cfg: KafkaConfig{}, w: &fakeWriter{err: sentinel}, now: time.Now}
	err := p.Enqueue(context.Background(), jobs.Job{Kind: jobs.KindEventPublisher})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}

func TestKafkaConsumer_HandlesRetriesAndCommits(t *testing.T) {
	r := &fakeReader{}
	r.pending = []kafka.Message{
		{Offset: 1, Value: encodeJob(t, jobs.Job{ID: "a", Kind: jobs.KindEventPublisher})},
		{Offset: 2, Value: []byte("not json")},
		{Offset: 3, Value: encodeJob(t, jobs.Job{ID: "b", Kind: jobs.KindEventPublisher})},
	}
	var mu sync.Mutex
	seen := map[string]int{}
	h := func(_ context.Context, j jobs.Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen[j.ID]++
		if j.ID == "b" && j.Attempt == 0 {
			return errors.New("transient")
		}
		return nil
	}
	c := newKafkaConsumer("events", r, h, Config{MaxAttempts: 3}, zerolog.Nop())
	c.sleep = func(context.Context, time.Duration) {}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	eventually(t, func() bool { return r.commits() == 3 }, "all offsets committed")
	if !c.Ready() {
		t.Fatalf("consumer should report ready while running")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	st := c.Stats()
	if st.Processed != 2 || st.Failed != 1 || st.Dead != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	mu.Lock()
	defer mu.Unlock()
	if seen["a"] != 1 || seen["b"] != 2 {
		t.Fatalf("unexpected handler calls: %v", seen)
	}
}

func TestKafkaConsumer_GivesUpAfterMaxAttempts(t *testing.T) {
	r := &fakeReader{pending: []kafka.Message{{Offset: 9, Value: encodeJob(t, jobs.Job{ID: "x", Kind: jobs.KindEventPublisher})}}}
	calls := 0
	c := newKafkaConsumer("events", r, func(context.Context, jobs.Job) error {
		calls++
		return errors.New("always")
	}, Config{MaxAttempts: 2}, zerolog.Nop())
	c.sleep = func(context.Context, time.Duration) {}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	eventually(t, func() bool { return r.commits() == 1 }, "offset committed after giving up")
	cancel()
	<-done
	if calls != 2 || c.Stats().Dead != 1 {
		t.Fatalf("calls=%d stats=%+v", calls, c.Stats())
	}
}

func TestKafkaConsumer_ShutdownMidRetryLeavesOffsetUncommitted(t *testing.T) {
	r := &fakeReader{pending: []kafka.Message{{Offset: 4, Value: encodeJob(t, jobs.Job{ID: "y", Kind: jobs.KindEventPublisher})}}}
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	c := newKafkaConsumer("events", r, func(context.Context, jobs.Job) error {
		calls.Add(1)
		cancel()
		return errors.New("enqueue interrupted")
	}, Config{MaxAttempts: 5}, zerolog.Nop())
	c.sleep = func(context.Context, time.Duration) {}
	if err := c.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	st := c.Stats()
	if calls.Load() != 1 || st.Dead != 0 || st.Failed != 1 {
		t.Fatalf("calls=%d stats=%+v", calls.Load(), st)
	}
	if r.commits() != 0 {
		t.Fatalf("interrupted job must not be committed, got %d commits", r.commits())
	}
}

func TestKafkaConfigTopic(t *testing.T) {
	if got := (KafkaConfig{TopicPrefix: "decidim."}).Topic("events"); got != "decidim.events" {
		t.Fatalf("topic=%q", got)
	}
}
