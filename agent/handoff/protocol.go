package handoff

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/types"
)

// HandoffStatus represents the status of a handoff.
type HandoffStatus string

const (
	StatusAccepted  HandoffStatus = "accepted"
	StatusCompleted HandoffStatus = "completed"
	StatusAborted   HandoffStatus = "aborted"
)

// Satisfaction records how a completed hand-off ended.
type Satisfaction string

const (
	// SatisfactionExplicit: the counterpart said so.
	SatisfactionExplicit Satisfaction = "explicit"
	// SatisfactionImplicit: the exchange budget ran out.
	SatisfactionImplicit Satisfaction = "implicit"
)

// Handoff is one specialist sub-conversation.
type Handoff struct {
	ID           string         `json:"id"`
	SessionID    string         `json:"session_id"`
	From         types.Identity `json:"from"`
	To           types.Identity `json:"to"`
	Question     string         `json:"question"`
	Status       HandoffStatus  `json:"status"`
	Exchanges    int            `json:"exchanges"`
	Satisfaction Satisfaction   `json:"satisfaction,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// Open reports whether the hand-off is still running.
func (h *Handoff) Open() bool { return h.Status == StatusAccepted }

// Duration is the elapsed time, up to now for open hand-offs.
func (h *Handoff) Duration() time.Duration {
	if h.CompletedAt != nil {
		return h.CompletedAt.Sub(h.CreatedAt)
	}
	return time.Since(h.CreatedAt)
}

// Manager opens and closes hand-offs for one session and keeps their history.
// At most one hand-off is open at a time.
type Manager struct {
	sessionID string
	roster    *types.Roster
	current   *Handoff
	history   []*Handoff
	logger    *zap.Logger
	mu        sync.RWMutex
	now       func() time.Time
}

// NewManager creates a manager bound to a session.
func NewManager(sessionID string, roster *types.Roster, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessionID: sessionID,
		roster:    roster,
		logger:    logger.With(zap.String("component", "handoff_manager"), zap.String("session_id", sessionID)),
		now:       time.Now,
	}
}

// Begin opens a hand-off to a specialist. It fails for identities that are
// not specialists and while another hand-off is open.
func (m *Manager) Begin(from, to types.Identity, question string) (*Handoff, error) {
	if !m.roster.IsSpecialist(to) {
		return nil, types.NewError(types.ErrUnknownParticipant, fmt.Sprintf("%q is not a specialist", to))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return nil, types.NewError(types.ErrInvalidTransition,
			fmt.Sprintf("hand-off to %s still open", m.current.To))
	}

	h := &Handoff{
		ID:        uuid.NewString(),
		SessionID: m.sessionID,
		From:      from,
		To:        to,
		Question:  question,
		Status:    StatusAccepted,
		CreatedAt: m.now(),
	}
	m.current = h
	m.history = append(m.history, h)

	m.logger.Info("handoff accepted",
		zap.String("id", h.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return h, nil
}

// RecordExchange counts one follow-up answered by the specialist on the
// open hand-off and returns the running count.
func (m *Manager) RecordExchange() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0
	}
	m.current.Exchanges++
	return m.current.Exchanges
}

// Complete closes the open hand-off as satisfied.
func (m *Manager) Complete(s Satisfaction) (*Handoff, error) {
	return m.finish(StatusCompleted, s)
}

// Abort closes the open hand-off without satisfaction (session ended).
func (m *Manager) Abort() (*Handoff, error) {
	return m.finish(StatusAborted, "")
}

func (m *Manager) finish(status HandoffStatus, s Satisfaction) (*Handoff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.current
	if h == nil {
		return nil, types.NewError(types.ErrInvalidTransition, "no open hand-off")
	}
	now := m.now()
	h.Status = status
	h.Satisfaction = s
	h.CompletedAt = &now
	m.current = nil

	m.logger.Info("handoff closed",
		zap.String("id", h.ID),
		zap.String("to", string(h.To)),
		zap.String("status", string(status)),
		zap.String("satisfaction", string(s)),
		zap.Int("exchanges", h.Exchanges),
	)
	return h, nil
}

// Current returns a copy of the open hand-off, if any.
func (m *Manager) Current() (Handoff, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Handoff{}, false
	}
	return *m.current, true
}

// History returns copies of every hand-off of the session, oldest first.
func (m *Manager) History() []Handoff {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Handoff, len(m.history))
	for i, h := range m.history {
		out[i] = *h
	}
	return out
}
