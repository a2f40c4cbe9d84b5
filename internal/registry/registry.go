package registry

import (
	"fmt"
	"sort"
	"strings"

	"eventgate/pkg/types"
)

// Channel is a downstream delivery channel.
type Channel string

const (
	ChannelEmail        Channel = "email"
	ChannelNotification Channel = "notification"
)

// Channels is the set of channels an event class supports.
type Channels struct {
	Email        bool
	Notification bool
}

// Empty reports whether no channel is set.
func (c Channels) Empty() bool { return !c.Email && !c.Notification }

// List returns the channel names in a stable order.
func (c Channels) List() []string {
	out := make([]string, 0, 2)
	if c.Email {
		out = append(out, string(ChannelEmail))
	}
	if c.Notification {
		out = append(out, string(ChannelNotification))
	}
	return out
}

// ParseChannels converts channel names into a Channels set.
func ParseChannels(names []string) (Channels, error) {
	var c Channels
	for _, n := range names {
		switch Channel(strings.ToLower(strings.TrimSpace(n))) {
		case ChannelEmail:
			c.Email = true
		case ChannelNotification:
			c.Notification = true
		default:
			return Channels{}, fmt.Errorf("unknown channel %q", n)
		}
	}
	return c, nil
}

// Registry maps event class identifiers to their channels. It is built once
// at startup and is safe for concurrent reads.
type Registry struct {
	byClass map[string]Channels
}

// New builds a registry from descriptors. Later descriptors override earlier
// ones with the same class.
func New(descs ...types.EventType) (*Registry, error) {
	r := &Registry{byClass: make(map[string]Channels, len(descs))}
	for _, d := range descs {
		class := strings.TrimSpace(d.Class)
		if class == "" {
			return nil, fmt.Errorf("event type with empty class")
		}
		ch, err := ParseChannels(d.Channels)
		if err != nil {
			return nil, fmt.Errorf("event type %s: %w", class, err)
		}
		r.byClass[class] = ch
	}
	return r, nil
}

// Lookup resolves an event class. ok is false for empty or unknown classes.
func (r *Registry) Lookup(class string) (Channels, bool) {
	if r == nil || class == "" {
		return Channels{}, false
	}
	ch, ok := r.byClass[class]
	return ch, ok
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byClass)
}

// List returns all event types sorted by class.
func (r *Registry) List() []types.EventType {
	if r == nil {
		return nil
	}
	out := make([]types.EventType, 0, len(r.byClass))
	for class, ch := range r.byClass {
		out = append(out, types.EventType{Class: class, Channels: ch.List()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Class < out[j].Class })
	return out
}
