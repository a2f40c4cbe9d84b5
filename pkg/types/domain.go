package types

import "time"

// EventType describes which delivery channels an event class supports.
type EventType struct {
	// Event class identifier as sent by publishers.
	// example: Decidim::Proposals::AcceptedProposalEvent
	Class string `json:"class" yaml:"class" toml:"class" example:"Decidim::Proposals::AcceptedProposalEvent"`
	// Supported channels: email, notification.
	// example: ["email","notification"]
	Channels []string `json:"channels" yaml:"channels" toml:"channels" example:"[\"email\",\"notification\"]"`
}

// DispatchRecord is one journal entry describing a gate decision.
type DispatchRecord struct {
	// Journal entry identifier.
	ID string `json:"id" example:"0b6f8d8e-8f7e-4a53-9d55-0f1f2c7c6a11"`
	// Identifier of the event publisher job that produced the decision.
	JobID string `json:"job_id,omitempty"`
	// Event name as published.
	// example: decidim.events.proposals.proposal_accepted
	EventName string `json:"event_name" example:"decidim.events.proposals.proposal_accepted"`
	// Event class identifier (may be empty).
	EventClass string `json:"event_class,omitempty"`
	// Resource type and id the event is about.
	ResourceType string `json:"resource_type,omitempty" example:"proposal"`
	ResourceID   string `json:"resource_id,omitempty" example:"42"`
	// One of enqueued, suppressed, no_channels.
	// example: enqueued
	Decision string `json:"decision" example:"enqueued"`
	// Channels that received a job.
	Channels []string `json:"channels"`
	// Whether the publisher bypassed the publication check.
	ForceSend bool `json:"force_send"`
	// When the decision was taken.
	CreatedAt time.Time `json:"created_at"`
}
