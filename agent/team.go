package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/llm"
	"github.com/chinmaygupta26/elyx/types"
)

// Team holds one Agent per roster participant and answers on behalf of
// whichever participant is asked.
type Team struct {
	roster *types.Roster
	agents map[types.Identity]*Agent
	logger *zap.Logger
}

// NewTeam builds an agent for every participant in roster, all sharing
// provider and config.
func NewTeam(roster *types.Roster, provider llm.Provider, config Config, logger *zap.Logger) (*Team, error) {
	if roster == nil {
		return nil, types.NewError(types.ErrInvalidRoster, "roster is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Team{
		roster: roster,
		agents: make(map[types.Identity]*Agent),
		logger: logger.With(zap.String("component", "team")),
	}
	for _, id := range roster.Identities() {
		desc, _ := roster.Lookup(id)
		a, err := New(desc, provider, config, logger)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", id, err)
		}
		t.agents[id] = a
	}
	return t, nil
}

// Roster returns the team roster.
func (t *Team) Roster() *types.Roster { return t.roster }

// Agent returns the agent of id.
func (t *Team) Agent(id types.Identity) (*Agent, bool) {
	a, ok := t.agents[id]
	return a, ok
}

// Respond lets speaker answer message. Unknown speakers are an
// UNKNOWN_PARTICIPANT error.
func (t *Team) Respond(ctx context.Context, speaker types.Identity, message, runningContext string) (string, error) {
	a, ok := t.agents[speaker]
	if !ok {
		return "", types.NewError(types.ErrUnknownParticipant, fmt.Sprintf("no agent for %q", speaker))
	}
	return a.Respond(ctx, message, runningContext)
}

// ResetHistories clears every agent's history.
func (t *Team) ResetHistories() {
	for _, a := range t.agents {
		a.ResetHistory()
	}
	t.logger.Debug("histories reset", zap.Int("agents", len(t.agents)))
}

// Classifier returns the routing classifier backed by the roster's router
// persona.
func (t *Team) Classifier() (*Classifier, error) {
	id := t.roster.Router()
	if id == "" {
		return nil, types.NewError(types.ErrInvalidRoster, "roster has no router")
	}
	return NewClassifier(t.agents[id]), nil
}
