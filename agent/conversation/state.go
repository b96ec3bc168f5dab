package conversation

import (
	"time"

	"github.com/chinmaygupta26/elyx/agent/handoff"
)

// Phase is the Turn Controller state.
type Phase string

const (
	PhaseOrchestrating       Phase = "ORCHESTRATING"
	PhaseSpecialistEngaged   Phase = "SPECIALIST_ENGAGED"
	PhaseAwaitingCounterpart Phase = "AWAITING_COUNTERPART"
	PhaseTerminated          Phase = "TERMINATED"
)

// TerminationReason records why a session ended.
type TerminationReason string

const (
	ReasonEndOfConversation TerminationReason = "end_of_conversation"
	ReasonExitCommand       TerminationReason = "exit_command"
	ReasonTurnCeiling       TerminationReason = "turn_ceiling"
	ReasonInputClosed       TerminationReason = "input_closed"
	ReasonCancelled         TerminationReason = "cancelled"
)

// Session is the record threaded through every turn. It is mutated only by
// the Controller; callers get copies through Controller.Snapshot.
type Session struct {
	ID          string `json:"id"`
	LatestInput string `json:"latest_input"`
	// Engaged is the active specialist. It is set only in SPECIALIST_ENGAGED.
	Engaged        handoff.Target    `json:"engaged"`
	RunningContext string            `json:"running_context"`
	Satisfied      bool              `json:"satisfied"`
	Active         bool              `json:"active"`
	TurnCount      int               `json:"turn_count"`
	Phase          Phase             `json:"phase"`
	Reason         TerminationReason `json:"reason,omitempty"`
	StartedAt      time.Time         `json:"started_at"`
}

// Routed reports whether the current turn is owned by a specialist.
func (s Session) Routed() bool { return s.Engaged.Engaged() }

// Terminated reports whether the session reached its terminal phase.
func (s Session) Terminated() bool { return s.Phase == PhaseTerminated }
