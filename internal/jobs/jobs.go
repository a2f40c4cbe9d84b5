package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"eventgate/pkg/resource"
	"eventgate/pkg/types"
)

// Kind identifies what a job does and which queue it runs on.
type Kind string

const (
	KindEventPublisher             Kind = "event_publisher"
	KindEmailNotificationGenerator Kind = "email_notification_generator"
	KindNotificationGenerator      Kind = "notification_generator"
)

// Queue names.
const (
	QueueEvents        = "events"
	QueueMailers       = "mailers"
	QueueNotifications = "notifications"
)

// Queue returns the queue a job kind is submitted to.
func (k Kind) Queue() string {
	switch k {
	case KindEmailNotificationGenerator:
		return QueueMailers
	case KindNotificationGenerator:
		return QueueNotifications
	default:
		return QueueEvents
	}
}

// Job is the envelope submitted to a queue backend. Generator jobs carry the
// same arguments as the event publisher job minus ForceSend.
type Job struct {
	ID            string             `json:"id"`
	Kind          Kind               `json:"kind"`
	EventName     string             `json:"event_name"`
	EventClass    string             `json:"event_class,omitempty"`
	Resource      *resource.Resource `json:"resource,omitempty"`
	Followers     []string           `json:"followers,omitempty"`
	AffectedUsers []string           `json:"affected_users,omitempty"`
	Extra         map[string]any     `json:"extra,omitempty"`
	ForceSend     bool               `json:"force_send,omitempty"`
	Attempt       int                `json:"attempt"`
	EnqueuedAt    time.Time          `json:"enqueued_at"`
}

// Queue returns the queue this job belongs to.
func (j Job) Queue() string { return j.Kind.Queue() }

// Key is used to partition jobs; jobs about the same resource share a key.
func (j Job) Key() string {
	if j.Resource == nil {
		return j.ID
	}
	return string(j.Resource.EffectiveKind()) + ":" + j.Resource.Type + ":" + j.Resource.ID
}

// Data returns the event payload carried by the job.
func (j Job) Data() types.EventData {
	return types.EventData{
		Resource:      j.Resource,
		EventClass:    j.EventClass,
		Followers:     j.Followers,
		AffectedUsers: j.AffectedUsers,
		Extra:         j.Extra,
		ForceSend:     j.ForceSend,
	}
}

// NewEventPublisher builds the job that runs the dispatch gate.
func NewEventPublisher(eventName string, data types.EventData) Job {
	return Job{
		ID:            uuid.NewString(),
		Kind:          KindEventPublisher,
		EventName:     eventName,
		EventClass:    data.EventClass,
		Resource:      data.Resource,
		Followers:     data.Followers,
		AffectedUsers: data.AffectedUsers,
		Extra:         data.Extra,
		ForceSend:     data.ForceSend,
	}
}

// NewGenerator builds a downstream generator job of the given kind.
func NewGenerator(kind Kind, eventName string, data types.EventData) Job {
	return Job{
		ID:            uuid.NewString(),
		Kind:          kind,
		EventName:     eventName,
		EventClass:    data.EventClass,
		Resource:      data.Resource,
		Followers:     data.Followers,
		AffectedUsers: data.AffectedUsers,
		Extra:         data.Extra,
	}
}

// Enqueuer submits jobs to a queue backend. Implementations must not block
// past ctx and return an error when the job was not accepted.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// Handler runs one job. A non-nil error makes the backend retry the job.
type Handler func(ctx context.Context, job Job) error

// EnqueuerFunc adapts a function to Enqueuer.
type EnqueuerFunc func(ctx context.Context, job Job) error

func (f EnqueuerFunc) Enqueue(ctx context.Context, job Job) error { return f(ctx, job) }

// permanentError marks a failure that retrying cannot fix.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent wraps err so queue backends drop the job instead of retrying it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
