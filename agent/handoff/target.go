package handoff

import "github.com/chinmaygupta26/elyx/types"

// Target is either "no specialist" or exactly one specialist identity.
// The zero value is NoTarget.
type Target struct {
	id types.Identity
}

// NoTarget returns the empty target.
func NoTarget() Target { return Target{} }

// ToSpecialist returns a target naming id. Callers validate id against the roster.
func ToSpecialist(id types.Identity) Target { return Target{id: id} }

// Specialist returns the engaged identity, if any.
func (t Target) Specialist() (types.Identity, bool) {
	return t.id, t.id != ""
}

// Engaged reports whether the target names a specialist.
func (t Target) Engaged() bool { return t.id != "" }

// String returns the identity or "none".
func (t Target) String() string {
	if t.id == "" {
		return "none"
	}
	return string(t.id)
}
