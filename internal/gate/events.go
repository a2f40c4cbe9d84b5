package gate

// Lifecycle event names.
const (
	EventDispatchSuppressed   = "dispatch_suppressed"
	EventDispatchEnqueued     = "dispatch_enqueued"
	EventDispatchNoChannels   = "dispatch_no_channels"
	EventEventClassUnresolved = "event_class_unresolved"
)

// Event is a gate lifecycle event: name + the domain event it concerns and
// optional fields.
type Event struct {
	Name      string
	EventName string
	Fields    map[string]any
}

// EventPublisher receives lifecycle events from the gate. Implementations
// should be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
