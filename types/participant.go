package types

import (
	"fmt"
	"sort"
)

// Identity names a single conversation participant, e.g. "Ruby" or "Dr. Warren".
type Identity string

// String returns the display name.
func (id Identity) String() string { return string(id) }

// Kind is the role a participant plays in a session.
type Kind string

const (
	KindOrchestrator Kind = "orchestrator"
	KindSpecialist   Kind = "specialist"
	KindCounterpart  Kind = "counterpart"
	KindRouter       Kind = "router"
)

// Descriptor is the static description of one participant.
type Descriptor struct {
	ID          Identity `json:"id" yaml:"id"`
	Kind        Kind     `json:"kind" yaml:"kind"`
	Title       string   `json:"title" yaml:"title"`
	Icon        string   `json:"icon" yaml:"icon"`
	Persona     string   `json:"persona" yaml:"persona"`
	Temperature float32  `json:"temperature" yaml:"temperature"`
}

const (
	fallbackIcon  = "👤"
	fallbackTitle = "Client"
)

// Roster is the closed, immutable set of participants of a deployment.
// It is built once and shared read-only.
type Roster struct {
	byID         map[Identity]Descriptor
	specialists  []Identity
	orchestrator Identity
	counterpart  Identity
	router       Identity
}

// NewRoster validates descs and builds a Roster. Exactly one orchestrator and
// one counterpart are required, at most one router, and at least one specialist.
// Specialist order is preserved.
func NewRoster(descs ...Descriptor) (*Roster, error) {
	r := &Roster{byID: make(map[Identity]Descriptor, len(descs))}

	for _, d := range descs {
		if d.ID == "" {
			return nil, NewError(ErrInvalidRoster, "participant identity is empty")
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, NewError(ErrInvalidRoster, fmt.Sprintf("duplicate participant %q", d.ID))
		}

		switch d.Kind {
		case KindOrchestrator:
			if r.orchestrator != "" {
				return nil, NewError(ErrInvalidRoster, "more than one orchestrator")
			}
			r.orchestrator = d.ID
		case KindCounterpart:
			if r.counterpart != "" {
				return nil, NewError(ErrInvalidRoster, "more than one counterpart")
			}
			r.counterpart = d.ID
		case KindRouter:
			if r.router != "" {
				return nil, NewError(ErrInvalidRoster, "more than one router")
			}
			r.router = d.ID
		case KindSpecialist:
			r.specialists = append(r.specialists, d.ID)
		default:
			return nil, NewError(ErrInvalidRoster, fmt.Sprintf("participant %q has unknown kind %q", d.ID, d.Kind))
		}
		r.byID[d.ID] = d
	}

	switch {
	case r.orchestrator == "":
		return nil, NewError(ErrInvalidRoster, "roster has no orchestrator")
	case r.counterpart == "":
		return nil, NewError(ErrInvalidRoster, "roster has no counterpart")
	case len(r.specialists) == 0:
		return nil, NewError(ErrInvalidRoster, "roster has no specialists")
	}
	return r, nil
}

// Orchestrator returns the routing participant.
func (r *Roster) Orchestrator() Identity { return r.orchestrator }

// Counterpart returns the client participant.
func (r *Roster) Counterpart() Identity { return r.counterpart }

// Router returns the classifier participant, or "" when none is configured.
func (r *Roster) Router() Identity { return r.router }

// Specialists returns a copy of the specialist identities in declaration order.
func (r *Roster) Specialists() []Identity {
	out := make([]Identity, len(r.specialists))
	copy(out, r.specialists)
	return out
}

// IsSpecialist reports whether id is exactly one of the specialist identities.
func (r *Roster) IsSpecialist(id Identity) bool {
	d, ok := r.byID[id]
	return ok && d.Kind == KindSpecialist
}

// Lookup returns the descriptor for id.
func (r *Roster) Lookup(id Identity) (Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Title returns the display title for id.
func (r *Roster) Title(id Identity) string {
	if d, ok := r.byID[id]; ok && d.Title != "" {
		return d.Title
	}
	return fallbackTitle
}

// Icon returns the display icon for id.
func (r *Roster) Icon(id Identity) string {
	if d, ok := r.byID[id]; ok && d.Icon != "" {
		return d.Icon
	}
	return fallbackIcon
}

// Identities returns every participant identity, sorted.
func (r *Roster) Identities() []Identity {
	out := make([]Identity, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
