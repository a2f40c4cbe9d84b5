// Package sink provides stand-in consumers for the mailers and notifications
// queues when no external generator is attached (memory backend). Jobs are
// logged and counted.
package sink

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"eventgate/internal/jobs"
)

var consumedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "eventgate",
		Subsystem: "sink",
		Name:      "jobs_consumed_total",
		Help:      "Generator jobs consumed by the in-process sink, by kind.",
	},
	[]string{"kind"},
)

func init() {
	prometheus.MustRegister(consumedTotal)
}

// Kinds are the generator job kinds a Sink consumes.
var Kinds = []jobs.Kind{jobs.KindEmailNotificationGenerator, jobs.KindNotificationGenerator}

// Sink logs and counts generator jobs. Safe for concurrent use.
type Sink struct {
	log zerolog.Logger

	mu     sync.Mutex
	counts map[jobs.Kind]int
	last   map[jobs.Kind]jobs.Job
}

func New(log zerolog.Logger) *Sink {
	return &Sink{
		log:    log.With().Str("component", "sink").Logger(),
		counts: make(map[jobs.Kind]int),
		last:   make(map[jobs.Kind]jobs.Job),
	}
}

// Handle is a jobs.Handler.
func (s *Sink) Handle(_ context.Context, job jobs.Job) error {
	s.mu.Lock()
	s.counts[job.Kind]++
	s.last[job.Kind] = job
	s.mu.Unlock()
	consumedTotal.WithLabelValues(string(job.Kind)).Inc()

	ev := s.log.Info().
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Str("event", job.EventName).
		Str("event_class", job.EventClass).
		Int("followers", len(job.Followers)).
		Int("affected_users", len(job.AffectedUsers))
	if job.Resource != nil {
		ev = ev.Str("resource_type", job.Resource.Type).Str("resource_id", job.Resource.ID)
	}
	ev.Msg("generator job received")
	return nil
}

// Registrar is satisfied by queue.Broker.
type Registrar interface {
	Handle(kind jobs.Kind, h jobs.Handler)
}

// Register installs the sink as handler for every generator kind.
func (s *Sink) Register(reg Registrar) {
	for _, k := range Kinds {
		reg.Handle(k, s.Handle)
	}
}

// Count returns how many jobs of kind were consumed.
func (s *Sink) Count(kind jobs.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[kind]
}

// Last returns the most recent job of kind.
func (s *Sink) Last(kind jobs.Kind) (jobs.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.last[kind]
	return j, ok
}
