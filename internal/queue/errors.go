package queue

import "errors"

// tooBusyError signals that a queue stayed full for MaxWait (HTTP 429).
type tooBusyError struct{ queue string }

func (e tooBusyError) Error() string { return "queue too busy: " + e.queue }

// ErrTooBusy constructs a tooBusyError for queue.
func ErrTooBusy(queue string) error { return tooBusyError{queue: queue} }

// IsTooBusy reports whether err indicates backpressure.
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// unknownQueueError is returned when no handler serves a job's queue or kind.
type unknownQueueError struct{ queue, kind string }

func (e unknownQueueError) Error() string {
	return "no handler for " + e.kind + " on queue " + e.queue
}

// IsUnknownQueue reports whether err indicates a job nobody can run.
func IsUnknownQueue(err error) bool {
	var e unknownQueueError
	return errors.As(err, &e)
}

// ErrClosed is returned by Enqueue once the broker is shutting down.
var ErrClosed = errors.New("queue broker is closed")

// IsClosed reports whether err indicates the broker no longer accepts jobs.
func IsClosed(err error) bool { return errors.Is(err, ErrClosed) }
