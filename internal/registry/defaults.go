package registry

import "eventgate/pkg/types"

var both = []string{string(ChannelEmail), string(ChannelNotification)}

// Defaults is the built-in event type catalog. Descriptor files loaded at
// startup extend or override it.
func Defaults() []types.EventType {
	notificationOnly := []string{string(ChannelNotification)}
	return []types.EventType{
		{Class: "Decidim::Proposals::AcceptedProposalEvent", Channels: both},
		{Class: "Decidim::Proposals::RejectedProposalEvent", Channels: both},
		{Class: "Decidim::Proposals::EvaluatingProposalEvent", Channels: both},
		{Class: "Decidim::Proposals::CoauthorInvitedEvent", Channels: both},
		{Class: "Decidim::Proposals::CoauthorAcceptedInviteEvent", Channels: notificationOnly},
		{Class: "Decidim::Proposals::RejectedCoauthorshipEvent", Channels: notificationOnly},
		{Class: "Decidim::Debates::CreateDebateEvent", Channels: both},
		{Class: "Decidim::Debates::DebateClosedEvent", Channels: both},
		{Class: "Decidim::Meetings::MeetingRegistrationsEnabledEvent", Channels: both},
		{Class: "Decidim::Meetings::UpcomingMeetingEvent", Channels: both},
		{Class: "Decidim::Meetings::MeetingClosedEvent", Channels: both},
		{Class: "Decidim::Conferences::ConferenceRegistrationsEnabledEvent", Channels: both},
		{Class: "Decidim::Conferences::UpdateConferenceEvent", Channels: both},
		{Class: "Decidim::ParticipatoryProcessStepActivatedEvent", Channels: both},
		{Class: "Decidim::ResourceHiddenEvent", Channels: notificationOnly},
	}
}
