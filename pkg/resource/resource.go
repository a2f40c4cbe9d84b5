package resource

import (
	"fmt"
	"time"
)

// Kind tags what a resource is within the containment chain.
type Kind string

const (
	KindResource           Kind = "resource"
	KindComponent          Kind = "component"
	KindParticipatorySpace Kind = "participatory_space"
)

// Publication is the publication state of a publicable entity.
// A nil *Publication means the entity is not publicable at all.
type Publication struct {
	PublishedAt *time.Time `json:"published_at" yaml:"published_at"`
}

// Published reports whether the entity has a non-zero publication timestamp.
func (p Publication) Published() bool {
	return p.PublishedAt != nil && !p.PublishedAt.IsZero()
}

// PublishedAt is a convenience constructor for a published state.
func PublishedAt(t time.Time) *Publication { return &Publication{PublishedAt: &t} }

// Unpublished returns a publicable state with no publication timestamp.
func Unpublished() *Publication { return &Publication{} }

// Space is a participatory space (process, assembly, conference...).
type Space struct {
	Type        string       `json:"type" yaml:"type"`
	ID          string       `json:"id" yaml:"id"`
	Publication *Publication `json:"publication,omitempty" yaml:"publication,omitempty"`
}

// Published reports whether the space blocks dispatch. Spaces without a
// publication state never block.
func (s *Space) Published() bool {
	if s == nil || s.Publication == nil {
		return true
	}
	return s.Publication.Published()
}

// Component is a feature container mounted in a participatory space.
type Component struct {
	ID          string       `json:"id" yaml:"id"`
	Manifest    string       `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	Publication *Publication `json:"publication,omitempty" yaml:"publication,omitempty"`
	Space       *Space       `json:"participatory_space,omitempty" yaml:"participatory_space,omitempty"`
}

// Published reports whether the component blocks dispatch.
func (c *Component) Published() bool {
	if c == nil || c.Publication == nil {
		return true
	}
	return c.Publication.Published()
}

// Resource is the domain object an event is about.
//
// Component is the has-component capability and is only consulted for
// KindResource. Space is the owning space of a KindComponent resource.
type Resource struct {
	Kind        Kind         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Type        string       `json:"type" yaml:"type"`
	ID          string       `json:"id" yaml:"id"`
	Publication *Publication `json:"publication,omitempty" yaml:"publication,omitempty"`
	Component   *Component   `json:"component,omitempty" yaml:"component,omitempty"`
	Space       *Space       `json:"participatory_space,omitempty" yaml:"participatory_space,omitempty"`
}

// EffectiveKind treats an empty kind as a plain resource.
func (r Resource) EffectiveKind() Kind {
	if r.Kind == "" {
		return KindResource
	}
	return r.Kind
}

// Validate checks the shape of a decoded resource.
func (r Resource) Validate() error {
	switch r.EffectiveKind() {
	case KindResource, KindComponent, KindParticipatorySpace:
	default:
		return fmt.Errorf("unknown resource kind %q", r.Kind)
	}
	if r.ID == "" {
		return fmt.Errorf("resource id is required")
	}
	return nil
}

// AsPublishable returns the resource's own publication state, if it has one.
func (r Resource) AsPublishable() (Publication, bool) {
	if r.Publication == nil {
		return Publication{}, false
	}
	return *r.Publication, true
}

// ResolveComponent returns the component in the resource's chain: the
// declared component for plain resources, or the resource itself when it is
// a component. Spaces and component-less resources return nil.
func (r Resource) ResolveComponent() *Component {
	switch r.EffectiveKind() {
	case KindResource:
		return r.Component
	case KindComponent:
		return &Component{
			ID:          r.ID,
			Manifest:    r.Type,
			Publication: r.Publication,
			Space:       r.Space,
		}
	}
	return nil
}

// ResolveSpace returns the participatory space in the resource's chain.
func (r Resource) ResolveSpace() *Space {
	if r.EffectiveKind() == KindParticipatorySpace {
		return &Space{Type: r.Type, ID: r.ID, Publication: r.Publication}
	}
	if c := r.ResolveComponent(); c != nil {
		return c.Space
	}
	return nil
}

// Notifiable reports whether every publicable entity in the chain
// {resource, participatory space, component} is published.
func Notifiable(r Resource) bool {
	if p, ok := r.AsPublishable(); ok && !p.Published() {
		return false
	}
	if !r.ResolveSpace().Published() {
		return false
	}
	if !r.ResolveComponent().Published() {
		return false
	}
	return true
}
