package types

import "eventgate/pkg/resource"

// EventData is the payload of a published event.
type EventData struct {
	// Resource the event is about. Required.
	Resource *resource.Resource `json:"resource"`
	// Event class identifier resolved through the event type registry.
	// example: Decidim::Proposals::AcceptedProposalEvent
	EventClass string `json:"event_class,omitempty" example:"Decidim::Proposals::AcceptedProposalEvent"`
	// Recipient ids following the resource.
	// example: ["1","2"]
	Followers []string `json:"followers,omitempty"`
	// Recipient ids directly affected by the event.
	// example: ["3"]
	AffectedUsers []string `json:"affected_users,omitempty"`
	// Free-form data forwarded to generators.
	Extra map[string]any `json:"extra,omitempty"`
	// Skip the publication check.
	// example: false
	ForceSend bool `json:"force_send,omitempty" example:"false"`
}

// PublishRequest is the body of POST /events.
type PublishRequest struct {
	// Event name, forwarded unchanged.
	// example: decidim.events.proposals.proposal_accepted
	Event string `json:"event" example:"decidim.events.proposals.proposal_accepted"`
	// Event payload.
	Data EventData `json:"data"`
}

// PublishResponse acknowledges an accepted event.
type PublishResponse struct {
	// Identifier of the enqueued event publisher job.
	JobID string `json:"job_id" example:"0b6f8d8e-8f7e-4a53-9d55-0f1f2c7c6a11"`
	// Queue the job was placed on.
	// example: events
	Queue string `json:"queue" example:"events"`
}

// EventTypesResponse wraps GET /event-types.
type EventTypesResponse struct {
	EventTypes []EventType `json:"event_types"`
}

// DispatchesResponse wraps GET /dispatches.
type DispatchesResponse struct {
	Dispatches []DispatchRecord `json:"dispatches"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// QueueStatus summarizes one job queue for /status.
type QueueStatus struct {
	// Queue name.
	// example: events
	Name string `json:"name" example:"events"`
	// Jobs waiting to be picked up.
	Depth int `json:"depth" example:"0"`
	// Maximum queued jobs before backpressure triggers.
	// example: 256
	Capacity int `json:"capacity" example:"256"`
	// Jobs currently being handled.
	Inflight int64 `json:"inflight" example:"0"`
	// Jobs handled successfully.
	Processed int64 `json:"processed" example:"10"`
	// Job attempts that returned an error.
	Failed int64 `json:"failed" example:"0"`
	// Jobs dropped after exhausting their attempts.
	Dead int64 `json:"dead" example:"0"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Queue backend in use: memory or kafka.
	// example: memory
	Backend string `json:"backend" example:"memory"`
	// Whether workers/consumers are running.
	Ready bool `json:"ready"`
	// Seconds since start.
	UptimeSeconds int64 `json:"uptime_seconds" example:"120"`
	// Number of registered event types.
	EventTypes int `json:"event_types" example:"12"`
	// Whether the dispatch journal is enabled.
	Journal bool `json:"journal"`
	// Number of decisions stored in the journal.
	JournalRecords int `json:"journal_records" example:"42"`
	// Per-queue status (memory backend only).
	Queues []QueueStatus `json:"queues"`
}
