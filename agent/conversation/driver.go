package conversation

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/agent/handoff"
	"github.com/chinmaygupta26/elyx/config"
	"github.com/chinmaygupta26/elyx/types"
)

var defaults = config.DefaultConversationConfig()

var (
	// DefaultFollowUp is the orchestrator line issued after every closed
	// sub-conversation.
	DefaultFollowUp = defaults.FollowUp

	// DefaultOpeningLine starts a simulated session.
	DefaultOpeningLine = defaults.OpeningLine

	// DefaultSimulatedExchanges bounds simulated sub-conversations.
	DefaultSimulatedExchanges = defaults.SimulatedExchanges
)

// Result summarizes a finished session.
type Result struct {
	SessionID string            `json:"session_id"`
	TurnCount int               `json:"turn_count"`
	Reason    TerminationReason `json:"reason"`
	Handoffs  []handoff.Handoff `json:"handoffs"`
	Duration  time.Duration     `json:"duration"`
}

// Driver runs one session to termination.
type Driver interface {
	Run(ctx context.Context) (*Result, error)
}

// DriverConfig configures either driver.
type DriverConfig struct {
	Controller Options
	// FollowUp defaults to DefaultFollowUp.
	FollowUp string
	// OpeningLine is used by the simulated driver only.
	OpeningLine string
	// Prompt receives the "You: " prompt of the interactive driver; nil disables it.
	Prompt io.Writer
}

// InteractiveConfig builds the interactive driver config from the
// conversation config section.
func InteractiveConfig(cfg config.ConversationConfig) DriverConfig {
	opts := OptionsFromConfig(cfg)
	opts.ExchangeBudget = cfg.InteractiveExchanges
	return DriverConfig{Controller: opts, FollowUp: cfg.FollowUp}
}

// SimulatedConfig builds the simulated driver config from the conversation
// config section. Simulated sessions start at turn 1.
func SimulatedConfig(cfg config.ConversationConfig) DriverConfig {
	opts := OptionsFromConfig(cfg)
	opts.ExchangeBudget = cfg.SimulatedExchanges
	opts.InitialTurns = 1
	return DriverConfig{Controller: opts, FollowUp: cfg.FollowUp, OpeningLine: cfg.OpeningLine}
}

// driver holds what both drivers share.
type driver struct {
	roster    *types.Roster
	responder Responder
	router    *handoff.Router
	cfg       DriverConfig
	logger    *zap.Logger
}

func newDriver(roster *types.Roster, responder Responder, router *handoff.Router, cfg DriverConfig, component string) driver {
	if cfg.FollowUp == "" {
		cfg.FollowUp = DefaultFollowUp
	}
	logger := cfg.Controller.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return driver{
		roster:    roster,
		responder: responder,
		router:    router,
		cfg:       cfg,
		logger:    logger.With(zap.String("component", component)),
	}
}

// newSession resets per-agent histories and creates a fresh controller.
func (d *driver) newSession(ctx context.Context) (*Controller, error) {
	if r, ok := d.responder.(HistoryResetter); ok {
		r.ResetHistories()
	}
	c, err := NewController(d.roster, d.responder, d.router, d.cfg.Controller)
	if err != nil {
		return nil, err
	}
	c.Start(ctx)
	return c, nil
}

// handBack issues the follow-up after a closed sub-conversation. It reports
// false when nothing was handed back.
func (d *driver) handBack(ctx context.Context, c *Controller, out Outcome) (string, bool) {
	if !out.Closed || out.Terminated {
		return "", false
	}
	text, err := c.HandBack(ctx, d.cfg.FollowUp)
	if err != nil {
		d.logger.Warn("hand back failed", zap.Error(err))
		return "", false
	}
	return text, true
}

func (d *driver) result(c *Controller) *Result {
	s := c.Snapshot()
	res := &Result{
		SessionID: s.ID,
		TurnCount: s.TurnCount,
		Reason:    s.Reason,
		Handoffs:  c.Handoffs(),
		Duration:  time.Since(s.StartedAt),
	}
	d.logger.Info("session finished",
		zap.String("session_id", res.SessionID),
		zap.String("reason", string(res.Reason)),
		zap.Int("turn_count", res.TurnCount),
		zap.Int("handoffs", len(res.Handoffs)),
	)
	return res
}
