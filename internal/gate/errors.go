package gate

import "errors"

// ErrMissingResource is returned when an event carries no resource. Callers
// must always provide one.
var ErrMissingResource = errors.New("event resource is required")

// ErrUnknownEventClass is returned in strict mode when the event class is not
// registered.
var ErrUnknownEventClass = errors.New("unknown event class")
