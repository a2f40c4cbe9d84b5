package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"eventgate/internal/jobs"
	"eventgate/pkg/types"
)

// EventTypeSource lists the registered event types.
type EventTypeSource interface {
	List() []types.EventType
	Len() int
}

// DispatchLog returns recent gate decisions.
type DispatchLog interface {
	Recent(ctx context.Context, limit int) ([]types.DispatchRecord, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// journalProbeTimeout bounds the journal checks made by Ready and Status.
const journalProbeTimeout = time.Second

// Config wires a Service. Journal, Queues and Ready are optional.
type Config struct {
	// Backend is reported by Status ("memory" or "kafka").
	Backend    string
	EventTypes EventTypeSource
	Enqueuer   jobs.Enqueuer
	Journal    DispatchLog
	Queues     func() []types.QueueStatus
	Ready      func() bool
	Logger     zerolog.Logger
}

// Service implements the HTTP API contract.
type Service struct {
	cfg     Config
	log     zerolog.Logger
	started time.Time
	now     func() time.Time
}

func New(cfg Config) *Service {
	return &Service{
		cfg:     cfg,
		log:     cfg.Logger.With().Str("component", "service").Logger(),
		started: time.Now(),
		now:     time.Now,
	}
}

// Publish validates req and enqueues an event publisher job for it. The gate
// decision happens asynchronously when the job runs. The event name is
// forwarded as sent.
func (s *Service) Publish(ctx context.Context, req types.PublishRequest) (types.PublishResponse, error) {
	event := req.Event
	if strings.TrimSpace(event) == "" {
		return types.PublishResponse{}, ErrInvalidRequest("event is required")
	}
	if req.Data.Resource == nil {
		return types.PublishResponse{}, ErrInvalidRequest("data.resource is required")
	}
	if err := req.Data.Resource.Validate(); err != nil {
		return types.PublishResponse{}, ErrInvalidRequest("data.resource: " + err.Error())
	}
	job := jobs.NewEventPublisher(event, req.Data)
	if err := s.cfg.Enqueuer.Enqueue(ctx, job); err != nil {
		return types.PublishResponse{}, err
	}
	s.log.Debug().Str("job_id", job.ID).Str("event", event).Str("event_class", req.Data.EventClass).Msg("event accepted")
	return types.PublishResponse{JobID: job.ID, Queue: job.Queue()}, nil
}

// EventTypes lists the registry sorted by class.
func (s *Service) EventTypes() []types.EventType {
	if s.cfg.EventTypes == nil {
		return []types.EventType{}
	}
	return s.cfg.EventTypes.List()
}

// Dispatches returns the most recent journal entries.
func (s *Service) Dispatches(ctx context.Context, limit int) ([]types.DispatchRecord, error) {
	if s.cfg.Journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.cfg.Journal.Recent(ctx, limit)
}

// Ready reports whether the queue backend is consuming and, when enabled,
// the journal answers.
func (s *Service) Ready() bool {
	if s.cfg.Ready != nil && !s.cfg.Ready() {
		return false
	}
	if s.cfg.Journal == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalProbeTimeout)
	defer cancel()
	if err := s.cfg.Journal.Ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("journal ping failed")
		return false
	}
	return true
}

// Status summarizes the daemon for /status.
func (s *Service) Status() types.StatusResponse {
	st := types.StatusResponse{
		Backend:       s.cfg.Backend,
		Ready:         s.Ready(),
		UptimeSeconds: int64(s.now().Sub(s.started) / time.Second),
		Journal:       s.cfg.Journal != nil,
		Queues:        []types.QueueStatus{},
	}
	if s.cfg.EventTypes != nil {
		st.EventTypes = s.cfg.EventTypes.Len()
	}
	if s.cfg.Queues != nil {
		st.Queues = s.cfg.Queues()
	}
	if s.cfg.Journal != nil {
		ctx, cancel := context.WithTimeout(context.Background(), journalProbeTimeout)
		defer cancel()
		if n, err := s.cfg.Journal.Count(ctx); err == nil {
			st.JournalRecords = n
		} else {
			s.log.Warn().Err(err).Msg("journal count failed")
		}
	}
	return st
}
