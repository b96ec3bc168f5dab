package conversation

import (
	"context"
	"time"

	"github.com/chinmaygupta26/elyx/types"
)

// EventType identifies a turn event.
type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventMessage        EventType = "message"
	EventHandoff        EventType = "handoff"
	// EventClosed: a specialist sub-conversation ended. Text is the satisfaction.
	EventClosed   EventType = "closed"
	EventReturned EventType = "returned"
	EventFollowUp EventType = "follow_up"
	// EventTerminated: Text is the termination reason.
	EventTerminated EventType = "terminated"
)

// Event is one observable step of a session, in emission order.
type Event struct {
	SessionID string         `json:"session_id"`
	Seq       int            `json:"seq"`
	Type      EventType      `json:"type"`
	Speaker   types.Identity `json:"speaker,omitempty"`
	Text      string         `json:"text,omitempty"`
	Phase     Phase          `json:"phase"`
	Turn      int            `json:"turn"`
	Target    types.Identity `json:"target,omitempty"`
	Time      time.Time      `json:"time"`
}

// EventSink receives session events. Sinks must not block for long; a
// session calls them synchronously.
type EventSink interface {
	Emit(ctx context.Context, ev Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, ev Event)

// Emit calls f.
func (f EventSinkFunc) Emit(ctx context.Context, ev Event) { f(ctx, ev) }

// NopSink discards events.
type NopSink struct{}

// Emit does nothing.
func (NopSink) Emit(context.Context, Event) {}

// MultiSink fans events out to every sink in order.
type MultiSink []EventSink

// Emit forwards ev to each sink.
func (m MultiSink) Emit(ctx context.Context, ev Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(ctx, ev)
		}
	}
}

// Recorder keeps every event in memory.
type Recorder struct {
	Events []Event
}

// Emit appends ev.
func (r *Recorder) Emit(_ context.Context, ev Event) { r.Events = append(r.Events, ev) }

// OfType returns the recorded events of type t.
func (r *Recorder) OfType(t EventType) []Event {
	var out []Event
	for _, ev := range r.Events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
