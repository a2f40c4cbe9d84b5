package service

import (
	"errors"
	"net/http"
)

// invalidRequestError signals a malformed publish request (400).
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string   { return e.msg }
func (e invalidRequestError) StatusCode() int { return http.StatusBadRequest }

// ErrInvalidRequest constructs an invalidRequestError.
func ErrInvalidRequest(msg string) error { return invalidRequestError{msg: msg} }

// IsInvalidRequest reports whether err is a request validation failure.
func IsInvalidRequest(err error) bool {
	var e invalidRequestError
	return errors.As(err, &e)
}

// journalDisabledError is returned by Dispatches when no journal is
// configured (503).
type journalDisabledError struct{}

func (journalDisabledError) Error() string   { return "dispatch journal is disabled" }
func (journalDisabledError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrJournalDisabled is returned by Dispatches when no journal is configured.
var ErrJournalDisabled error = journalDisabledError{}

func IsJournalDisabled(err error) bool {
	var e journalDisabledError
	return errors.As(err, &e)
}
