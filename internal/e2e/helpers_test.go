package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"eventgate/internal/gate"
	"eventgate/internal/httpapi"
	"eventgate/internal/jobs"
	"eventgate/internal/journal"
	"eventgate/internal/queue"
	"eventgate/internal/registry"
	"eventgate/internal/service"
	"eventgate/internal/sink"
	"eventgate/pkg/types"
)

// stack is an in-process eventgated: registry, memory broker, gate, sink,
// journal, service and HTTP mux behind an httptest server.
type stack struct {
	srv     *httptest.Server
	broker  *queue.Broker
	sink    *sink.Sink
	journal *journal.Journal
}

type stackOptions struct {
	queue queue.Config
	// wrap decorates the gate handler, e.g. to block workers.
	wrap func(jobs.Handler) jobs.Handler
}

func newStack(t *testing.T, opts stackOptions) *stack {
	t.Helper()
	log := zerolog.Nop()
	reg, err := registry.Load("")
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	j, err := journal.Open(context.Background(), journal.MemoryPath)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })

	broker := queue.NewBroker(opts.queue, log)
	g := gate.New(gate.Config{EventTypes: reg, Enqueuer: broker, Journal: j, Logger: log})
	var h jobs.Handler = g.HandleJob
	if opts.wrap != nil {
		h = opts.wrap(h)
	}
	broker.Handle(jobs.KindEventPublisher, h)
	sk := sink.New(log)
	sk.Register(broker)
	broker.Start(context.Background())

	svc := service.New(service.Config{
		Backend:    "memory",
		EventTypes: reg,
		Enqueuer:   broker,
		Journal:    j,
		Queues:     broker.Stats,
		Ready:      broker.Ready,
		Logger:     log,
	})
	httpapi.SetLogger(log)
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = broker.Stop(ctx)
	})
	return &stack{srv: srv, broker: broker, sink: sk, journal: j}
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte, header ...string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func publishBody(t *testing.T, event, class string, r map[string]any, force bool) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"event": event,
		"data": map[string]any{
			"resource":       r,
			"event_class":    class,
			"followers":      []string{"1", "2"},
			"affected_users": []string{"3"},
			"extra":          map[string]any{"k": "v"},
			"force_send":     force,
		},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

// waitDispatches polls /dispatches until n records exist.
func waitDispatches(t *testing.T, base string, n int) []types.DispatchRecord {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, body := httpGet(t, base+"/dispatches")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("/dispatches %d %s", resp.StatusCode, body)
		}
		var out types.DispatchesResponse
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("/dispatches json: %v body=%s", err, body)
		}
		if len(out.Dispatches) >= n {
			return out.Dispatches
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d dispatches, got %d", n, len(out.Dispatches))
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
