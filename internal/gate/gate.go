package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"eventgate/internal/jobs"
	"eventgate/internal/registry"
	"eventgate/pkg/resource"
	"eventgate/pkg/types"
)

// Decisions recorded in the journal.
const (
	DecisionEnqueued   = "enqueued"
	DecisionSuppressed = "suppressed"
	DecisionNoChannels = "no_channels"
)

// EventTypes resolves an event class to its channels.
type EventTypes interface {
	Lookup(class string) (registry.Channels, bool)
}

// Recorder persists a summary of each decision.
type Recorder interface {
	Record(ctx context.Context, rec types.DispatchRecord) error
}

// Config wires a Gate.
type Config struct {
	EventTypes EventTypes
	Enqueuer   jobs.Enqueuer
	// Journal is optional.
	Journal Recorder
	Logger  zerolog.Logger
	// Strict turns unknown event classes into ErrUnknownEventClass instead of
	// dispatching nothing.
	Strict bool
}

// Gate is the notification dispatch gate. It holds no mutable state and is
// safe for concurrent use.
type Gate struct {
	types    EventTypes
	enqueuer jobs.Enqueuer
	journal  Recorder
	events   EventPublisher
	log      zerolog.Logger
	strict   bool
	now      func() time.Time
}

// New constructs a Gate.
func New(cfg Config) *Gate {
	return &Gate{
		types:    cfg.EventTypes,
		enqueuer: cfg.Enqueuer,
		journal:  cfg.Journal,
		events:   noopPublisher{},
		log:      cfg.Logger.With().Str("component", "gate").Logger(),
		strict:   cfg.Strict,
		now:      time.Now,
	}
}

// SetEventPublisher installs a lifecycle event sink. nil restores the no-op.
func (g *Gate) SetEventPublisher(p EventPublisher) {
	if p == nil {
		g.events = noopPublisher{}
		return
	}
	g.events = p
}

// Dispatch runs the gate for one event: it suppresses events about
// unpublished resources unless data.ForceSend is set, then enqueues one
// generator job per channel declared by data.EventClass.
func (g *Gate) Dispatch(ctx context.Context, eventName string, data types.EventData) error {
	return g.dispatch(ctx, "", eventName, data)
}

// HandleJob is the queue handler for event publisher jobs. Precondition
// violations are reported as permanent so the job is not retried.
func (g *Gate) HandleJob(ctx context.Context, job jobs.Job) error {
	err := g.dispatch(ctx, job.ID, job.EventName, job.Data())
	if errors.Is(err, ErrMissingResource) || errors.Is(err, ErrUnknownEventClass) {
		return jobs.Permanent(err)
	}
	return err
}

func (g *Gate) dispatch(ctx context.Context, jobID, eventName string, data types.EventData) error {
	if data.Resource == nil {
		return ErrMissingResource
	}
	log := g.log.With().Str("event", eventName).Str("event_class", data.EventClass).
		Str("resource_type", data.Resource.Type).Str("resource_id", data.Resource.ID).Logger()

	if !data.ForceSend && !resource.Notifiable(*data.Resource) {
		log.Debug().Msg("resource chain unpublished; event suppressed")
		g.decide(ctx, jobID, eventName, data, DecisionSuppressed, nil)
		g.events.Publish(Event{Name: EventDispatchSuppressed, EventName: eventName})
		return nil
	}

	channels, err := g.eventType(log, eventName, data.EventClass)
	if err != nil {
		return err
	}
	if channels.Empty() {
		g.decide(ctx, jobID, eventName, data, DecisionNoChannels, nil)
		g.events.Publish(Event{Name: EventDispatchNoChannels, EventName: eventName})
		return nil
	}

	var routed []string
	if channels.Email {
		if err := g.enqueue(ctx, jobs.KindEmailNotificationGenerator, eventName, data); err != nil {
			return fmt.Errorf("enqueue email notification: %w", err)
		}
		routed = append(routed, string(registry.ChannelEmail))
	}
	if channels.Notification {
		if err := g.enqueue(ctx, jobs.KindNotificationGenerator, eventName, data); err != nil {
			return fmt.Errorf("enqueue notification: %w", err)
		}
		routed = append(routed, string(registry.ChannelNotification))
	}
	for _, ch := range routed {
		routedTotal.WithLabelValues(ch).Inc()
	}
	log.Debug().Strs("channels", routed).Bool("force_send", data.ForceSend).Msg("event dispatched")
	g.decide(ctx, jobID, eventName, data, DecisionEnqueued, routed)
	g.events.Publish(Event{Name: EventDispatchEnqueued, EventName: eventName, Fields: map[string]any{"channels": routed}})
	return nil
}

// eventType resolves the class. Empty classes silently resolve to no
// channels; unknown classes are logged and counted.
func (g *Gate) eventType(log zerolog.Logger, eventName, class string) (registry.Channels, error) {
	if class == "" {
		return registry.Channels{}, nil
	}
	if g.types != nil {
		if ch, ok := g.types.Lookup(class); ok {
			return ch, nil
		}
	}
	unresolvedTotal.Inc()
	g.events.Publish(Event{Name: EventEventClassUnresolved, EventName: eventName, Fields: map[string]any{"event_class": class}})
	if g.strict {
		return registry.Channels{}, fmt.Errorf("%w: %s", ErrUnknownEventClass, class)
	}
	log.Warn().Msg("event class not registered; nothing dispatched")
	return registry.Channels{}, nil
}

func (g *Gate) enqueue(ctx context.Context, kind jobs.Kind, eventName string, data types.EventData) error {
	return g.enqueuer.Enqueue(ctx, jobs.NewGenerator(kind, eventName, data))
}

// decide counts and journals a decision. Journal failures are logged only.
func (g *Gate) decide(ctx context.Context, jobID, eventName string, data types.EventData, decision string, channels []string) {
	decisionsTotal.WithLabelValues(decision).Inc()
	if g.journal == nil {
		return
	}
	if channels == nil {
		channels = []string{}
	}
	rec := types.DispatchRecord{
		JobID:        jobID,
		EventName:    eventName,
		EventClass:   data.EventClass,
		ResourceType: data.Resource.Type,
		ResourceID:   data.Resource.ID,
		Decision:     decision,
		Channels:     channels,
		ForceSend:    data.ForceSend,
		CreatedAt:    g.now().UTC(),
	}
	if err := g.journal.Record(ctx, rec); err != nil {
		g.log.Warn().Err(err).Str("event", eventName).Msg("journal record failed")
	}
}
