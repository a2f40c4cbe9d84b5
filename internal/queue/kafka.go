package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"eventgate/internal/jobs"
	"eventgate/pkg/types"
)

// KafkaConfig locates the cluster and names topics. Each queue maps to topic
// TopicPrefix+queue.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
	GroupID     string
}

// Topic returns the topic backing queue.
func (c KafkaConfig) Topic(queue string) string { return c.TopicPrefix + queue }

// messageWriter is the subset of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageReader is the subset of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer is an Enqueuer that writes jobs as JSON to their queue topic,
// keyed by resource so jobs about one resource stay on one partition.
type KafkaProducer struct {
	cfg KafkaConfig
	w   messageWriter
	now func() time.Time
}

// NewKafkaProducer builds a producer on a kafka.Writer without a fixed topic.
func NewKafkaProducer(cfg KafkaConfig) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaProducer{cfg: cfg, w: w, now: time.Now}
}

// Enqueue writes job to its topic. Unlike the memory broker there is no
// handler check: consumers of the topic live outside this process.
func (p *KafkaProducer) Enqueue(ctx context.Context, job jobs.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = p.now().UTC()
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	msg := kafka.Message{
		Topic: p.cfg.Topic(job.Queue()),
		Key:   []byte(job.Key()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(job.Kind)},
			{Key: "job_id", Value: []byte(job.ID)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", msg.Topic, err)
	}
	jobsEnqueuedTotal.WithLabelValues(job.Queue(), string(job.Kind)).Inc()
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaProducer) Close() error { return p.w.Close() }

// KafkaConsumer runs a handler over one queue topic in a consumer group.
// Offsets are committed only after the handler succeeded or the job was
// given up on, so delivery is at-least-once.
type KafkaConsumer struct {
	queue  string
	r      messageReader
	h      jobs.Handler
	cfg    Config
	log    zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration)
	ready  atomic.Bool
	done   atomic.Int64
	failed atomic.Int64
	dead   atomic.Int64
}

// NewKafkaConsumer builds a consumer for queue using the group in kc.
func NewKafkaConsumer(kc KafkaConfig, queue string, h jobs.Handler, cfg Config, log zerolog.Logger) *KafkaConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: kc.Brokers,
		GroupID: kc.GroupID,
		Topic:   kc.Topic(queue),
	})
	return newKafkaConsumer(queue, r, h, cfg, log)
}

func newKafkaConsumer(queue string, r messageReader, h jobs.Handler, cfg Config, log zerolog.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		queue: queue,
		r:     r,
		h:     h,
		cfg:   cfg.withDefaults(),
		log:   log.With().Str("component", "kafka_consumer").Str("queue", queue).Logger(),
		sleep: sleepCtx,
	}
}

// Ready reports whether Run is consuming.
func (c *KafkaConsumer) Ready() bool { return c.ready.Load() }

// Run consumes until ctx is canceled. It returns nil on cancellation.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	c.ready.Store(true)
	defer c.ready.Store(false)
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Warn().Err(err).Msg("kafka fetch error")
			c.sleep(ctx, c.cfg.RetryBackoff)
			continue
		}
		var job jobs.Job
		if err := json.Unmarshal(m.Value, &job); err != nil {
			c.dead.Add(1)
			c.log.Error().Err(err).Str("topic", m.Topic).Int("partition", m.Partition).Int64("offset", m.Offset).
				Msg("undecodable job skipped")
		} else {
			c.handle(ctx, job)
		}
		if ctx.Err() != nil {
			return nil
		}
		if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.log.Warn().Err(err).Int64("offset", m.Offset).Msg("kafka commit error")
		}
	}
}

// handle runs the handler in place, retrying with backoff up to MaxAttempts.
func (c *KafkaConsumer) handle(ctx context.Context, job jobs.Job) {
	for {
		start := time.Now()
		err := safeHandle(ctx, c.h, job)
		jobDuration.WithLabelValues(c.queue, string(job.Kind)).Observe(time.Since(start).Seconds())
		if err == nil {
			c.done.Add(1)
			jobsHandledTotal.WithLabelValues(c.queue, string(job.Kind), "success").Inc()
			return
		}
		c.failed.Add(1)
		jobsHandledTotal.WithLabelValues(c.queue, string(job.Kind), "error").Inc()
		if ctx.Err() != nil {
			// left uncommitted; the group redelivers it
			c.log.Warn().Err(err).Str("job_id", job.ID).Int("attempts", job.Attempt+1).Msg("job interrupted by shutdown")
			return
		}
		if job.Attempt+1 >= c.cfg.MaxAttempts || jobs.IsPermanent(err) {
			c.dead.Add(1)
			jobsHandledTotal.WithLabelValues(c.queue, string(job.Kind), "dead").Inc()
			c.log.Error().Err(err).Str("job_id", job.ID).Int("attempts", job.Attempt+1).Msg("job failed permanently")
			return
		}
		job.Attempt++
		c.log.Warn().Err(err).Str("job_id", job.ID).Int("attempt", job.Attempt).Msg("job failed, retrying")
		c.sleep(ctx, c.cfg.backoff(job.Attempt))
		if ctx.Err() != nil {
			return
		}
	}
}

// Stats reports consumer counters in the shape used for memory queues.
func (c *KafkaConsumer) Stats() types.QueueStatus {
	return types.QueueStatus{
		Name:      c.queue,
		Processed: c.done.Load(),
		Failed:    c.failed.Load(),
		Dead:      c.dead.Load(),
	}
}

// Close closes the underlying reader.
func (c *KafkaConsumer) Close() error { return c.r.Close() }

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
