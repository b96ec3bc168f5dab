package conversation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/agent/handoff"
	"github.com/chinmaygupta26/elyx/types"
)

const (
	specialistFollowUpPrompt = "Based on your answer, please ask one practical, concise follow-up. Expert said: %s"
	teamResponsePrompt       = "Response from team: %s"
	noReplyPlaceholder       = "(no reply)"
)

// SimulatedDriver generates counterpart messages with the Responder under
// the counterpart persona. Sub-conversations are bounded by the exchange
// budget, so every session reaches an end keyword or the turn ceiling.
type SimulatedDriver struct {
	driver
}

// NewSimulatedDriver creates a simulated driver. A non-positive exchange
// budget is replaced by DefaultSimulatedExchanges.
func NewSimulatedDriver(roster *types.Roster, responder Responder, router *handoff.Router, cfg DriverConfig) *SimulatedDriver {
	if cfg.Controller.ExchangeBudget <= 0 {
		cfg.Controller.ExchangeBudget = DefaultSimulatedExchanges
	}
	if strings.TrimSpace(cfg.OpeningLine) == "" {
		cfg.OpeningLine = DefaultOpeningLine
	}
	return &SimulatedDriver{driver: newDriver(roster, responder, router, cfg, "simulated_driver")}
}

// Run drives one session to termination or until ctx is done.
func (d *SimulatedDriver) Run(ctx context.Context) (*Result, error) {
	c, err := d.newSession(ctx)
	if err != nil {
		return nil, err
	}

	msg := d.cfg.OpeningLine
	for !c.Terminated() {
		if ctx.Err() != nil {
			c.Close(ctx, ReasonCancelled)
			break
		}

		out, err := c.Receive(ctx, msg)
		if err != nil {
			d.logger.Warn("message rejected", zap.Error(err))
			break
		}
		if out.Terminated {
			break
		}

		var prompt string
		if followUp, ok := d.handBack(ctx, c, out); ok {
			prompt = fmt.Sprintf(teamResponsePrompt, followUp)
		} else if out.Phase == PhaseSpecialistEngaged {
			prompt = fmt.Sprintf(specialistFollowUpPrompt, out.Reply)
		} else {
			prompt = fmt.Sprintf(teamResponsePrompt, out.Reply)
		}
		msg = d.counterpartLine(ctx, prompt)
	}
	return d.result(c), nil
}

// counterpartLine asks the responder for the counterpart's next message.
// Failures and blank output become placeholder text.
func (d *SimulatedDriver) counterpartLine(ctx context.Context, prompt string) string {
	counterpart := d.roster.Counterpart()
	reply, err := d.responder.Respond(ctx, counterpart, prompt, "")
	if err != nil {
		d.logger.Warn("counterpart generation failed", zap.Error(err))
		return InlineError(counterpart, err)
	}
	if strings.TrimSpace(reply) == "" {
		return noReplyPlaceholder
	}
	return reply
}
