package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"eventgate/internal/queue"
)

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func TestPublish_TooBusyMaps429(t *testing.T) {
	before := testutil.ToFloat64(backpressureTotal.WithLabelValues("queue"))
	svc := &mockService{publishErr: fmt.Errorf("enqueue: %w", queue.ErrTooBusy("events"))}
	w := postEvent(NewMux(svc), validEvent, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if after := testutil.ToFloat64(backpressureTotal.WithLabelValues("queue")); after < before+1 {
		t.Fatalf("backpressure counter not incremented: before=%v after=%v", before, after)
	}
}

func TestPublish_ClosedMaps503(t *testing.T) {
	svc := &mockService{publishErr: queue.ErrClosed}
	w := postEvent(NewMux(svc), validEvent, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestPublish_HTTPErrorUsesStatusCode(t *testing.T) {
	svc := &mockService{publishErr: mockHTTPError{msg: "teapot", code: http.StatusTeapot}}
	w := postEvent(NewMux(svc), validEvent, nil)
	if w.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", w.Code)
	}
}

func TestPublish_UnknownErrorMaps500(t *testing.T) {
	svc := &mockService{publishErr: errors.New("boom")}
	w := postEvent(NewMux(svc), validEvent, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
