package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/agent/handoff"
	"github.com/chinmaygupta26/elyx/types"
)

const tracerName = "github.com/chinmaygupta26/elyx/agent/conversation"

// ErrSessionTerminated is returned for input received after termination.
var ErrSessionTerminated = types.NewError(types.ErrSessionTerminated, "session terminated")

// Responder produces one participant's reply to a message, given the
// running context. Implementations may fail; the controller degrades the
// failure into an inline message.
type Responder interface {
	Respond(ctx context.Context, speaker types.Identity, message, runningContext string) (string, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, speaker types.Identity, message, runningContext string) (string, error)

// Respond calls f.
func (f ResponderFunc) Respond(ctx context.Context, speaker types.Identity, message, runningContext string) (string, error) {
	return f(ctx, speaker, message, runningContext)
}

// HistoryResetter is implemented by responders that keep per-agent history.
type HistoryResetter interface {
	ResetHistories()
}

// MetricsRecorder receives controller measurements.
type MetricsRecorder interface {
	RecordTurn(speaker string, failed bool)
	RecordRoute(reason string)
	RecordHandoffStarted(specialist string)
	RecordHandoffClosed(specialist, outcome string, exchanges int)
	RecordTransition(from, to string)
	RecordSession(reason string, turns int, duration time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordTurn(string, bool)                  {}
func (nopMetrics) RecordRoute(string)                       {}
func (nopMetrics) RecordHandoffStarted(string)              {}
func (nopMetrics) RecordHandoffClosed(string, string, int)  {}
func (nopMetrics) RecordTransition(string, string)          {}
func (nopMetrics) RecordSession(string, int, time.Duration) {}

// InlineError is the text substituted for a failed reply.
func InlineError(speaker types.Identity, err error) string {
	return fmt.Sprintf("(Error from %s: %v)", speaker, err)
}

// Outcome describes what one Receive call did.
type Outcome struct {
	Phase  Phase  `json:"phase"`
	Signal Signal `json:"signal"`
	// Speaker produced Reply, the last output the counterpart sees.
	Speaker types.Identity `json:"speaker,omitempty"`
	Reply   string         `json:"reply,omitempty"`
	// Specialist is the engaged, or just released, specialist.
	Specialist types.Identity `json:"specialist,omitempty"`
	// Closed is set when a specialist sub-conversation ended on this turn.
	Closed     bool              `json:"closed"`
	Implicit   bool              `json:"implicit"`
	Terminated bool              `json:"terminated"`
	Reason     TerminationReason `json:"reason,omitempty"`
	TurnCount  int               `json:"turn_count"`
	// Ignored is set for blank messages.
	Ignored bool `json:"ignored"`
}

// Controller is the Turn Controller: it owns one Session and moves it
// through ORCHESTRATING, SPECIALIST_ENGAGED, AWAITING_COUNTERPART and
// TERMINATED one counterpart message at a time. Calls are serialized.
type Controller struct {
	roster    *types.Roster
	responder Responder
	router    *handoff.Router
	handoffs  *handoff.Manager
	opts      Options

	session Session
	context *BoundedContext
	started bool
	seq     int

	tracer trace.Tracer
	logger *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewController creates a controller with a fresh session in
// AWAITING_COUNTERPART. A nil router never hands off.
func NewController(roster *types.Roster, responder Responder, router *handoff.Router, opts Options) (*Controller, error) {
	if roster == nil {
		return nil, types.NewError(types.ErrInvalidRoster, "roster is required")
	}
	if responder == nil {
		return nil, types.NewError(types.ErrInvalidRequest, "responder is required")
	}
	opts = opts.withDefaults()
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if router == nil {
		router = handoff.NewRouter(nil, roster, opts.Logger)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	c := &Controller{
		roster:    roster,
		responder: responder,
		router:    router,
		handoffs:  handoff.NewManager(opts.SessionID, roster, opts.Logger),
		opts:      opts,
		context:   NewBoundedContext(opts.ContextBudget),
		tracer:    tracer,
		logger: opts.Logger.With(
			zap.String("component", "turn_controller"),
			zap.String("session_id", opts.SessionID),
		),
		now: time.Now,
	}
	c.session = Session{
		ID:        opts.SessionID,
		Engaged:   handoff.NoTarget(),
		Active:    true,
		TurnCount: opts.InitialTurns,
		Phase:     PhaseAwaitingCounterpart,
	}
	return c, nil
}

// ID returns the session ID.
func (c *Controller) ID() string { return c.session.ID }

// Roster returns the participant roster.
func (c *Controller) Roster() *types.Roster { return c.roster }

// Start emits the session start event. It is called implicitly by the
// first Receive and is a no-op afterwards. A session seeded at the turn
// ceiling terminates right away.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start(ctx)
}

func (c *Controller) start(ctx context.Context) {
	if c.started {
		return
	}
	c.started = true
	c.session.StartedAt = c.now()
	c.emit(ctx, Event{Type: EventSessionStarted})
	c.logger.Info("session started", zap.Int("turn_count", c.session.TurnCount))

	if c.session.TurnCount >= c.opts.TurnCeiling {
		c.terminate(ctx, ReasonTurnCeiling)
	}
}

// Receive consumes one counterpart message and runs the turn it triggers.
// Responder failures never surface here; the only error is
// ErrSessionTerminated.
func (c *Controller) Receive(ctx context.Context, msg string) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start(ctx)

	if c.session.Phase == PhaseTerminated {
		return c.finish(Outcome{}), ErrSessionTerminated
	}
	text := strings.TrimSpace(msg)
	if text == "" {
		return c.finish(Outcome{Signal: SignalNone, Ignored: true}), nil
	}

	ctx, span := c.tracer.Start(ctx, "conversation.receive", trace.WithAttributes(
		attribute.String("session.id", c.session.ID),
		attribute.String("phase", string(c.session.Phase)),
	))
	defer span.End()

	c.session.LatestInput = text
	c.emit(ctx, Event{Type: EventMessage, Speaker: c.roster.Counterpart(), Text: text})

	out := Outcome{Signal: c.opts.Lexicon.Classify(text)}
	span.SetAttributes(attribute.String("signal", string(out.Signal)))

	switch {
	case out.Signal == SignalExit:
		c.terminate(ctx, ReasonExitCommand)
	case out.Signal == SignalEnd:
		c.terminate(ctx, ReasonEndOfConversation)
	case c.session.Phase == PhaseSpecialistEngaged:
		c.continueSpecialist(ctx, text, &out)
	default:
		c.orchestrate(ctx, text, &out)
	}

	out = c.finish(out)
	span.SetAttributes(attribute.String("phase.after", string(out.Phase)))
	return out, nil
}

// HandBack returns the counterpart to the orchestrator after a closed
// sub-conversation and issues the fixed follow-up line as the
// orchestrator's turn. It is only valid in AWAITING_COUNTERPART.
func (c *Controller) HandBack(ctx context.Context, followUp string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start(ctx)

	switch c.session.Phase {
	case PhaseTerminated:
		return "", ErrSessionTerminated
	case PhaseAwaitingCounterpart:
	default:
		return "", types.NewError(types.ErrInvalidTransition,
			fmt.Sprintf("hand back not allowed in %s", c.session.Phase))
	}

	orch := c.roster.Orchestrator()
	c.emit(ctx, Event{Type: EventReturned, Speaker: orch})
	c.emit(ctx, Event{Type: EventFollowUp, Speaker: orch, Text: followUp})
	return followUp, nil
}

// Close terminates the session from outside, e.g. when input ends.
// Closing a terminated session does nothing.
func (c *Controller) Close(ctx context.Context, reason TerminationReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start(ctx)
	c.terminate(ctx, reason)
}

// Snapshot returns a copy of the session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	s.RunningContext = c.context.String()
	return s
}

// Terminated reports whether the session has ended.
func (c *Controller) Terminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Phase == PhaseTerminated
}

// Handoffs returns the hand-off history of the session.
func (c *Controller) Handoffs() []handoff.Handoff {
	return c.handoffs.History()
}

// =============================================================================
// Turns
// =============================================================================

func (c *Controller) continueSpecialist(ctx context.Context, text string, out *Outcome) {
	id, _ := c.session.Engaged.Specialist()
	out.Specialist = id

	if out.Signal == SignalSatisfied {
		c.closeSpecialist(ctx, handoff.SatisfactionExplicit, out)
		return
	}

	reply := c.respond(ctx, id, text, c.context.String())
	out.Speaker, out.Reply = id, reply
	c.context.Append(exchangeEntry(text, id.String(), reply, c.opts.SnippetLimit))

	n := c.handoffs.RecordExchange()
	if c.opts.ExchangeBudget > 0 && n >= c.opts.ExchangeBudget {
		c.closeSpecialist(ctx, handoff.SatisfactionImplicit, out)
	}
}

func (c *Controller) orchestrate(ctx context.Context, text string, out *Outcome) {
	c.setPhase(ctx, PhaseOrchestrating)

	orch := c.roster.Orchestrator()
	reply := c.respond(ctx, orch, text, c.context.String())
	out.Speaker, out.Reply = orch, reply

	d := c.router.Route(ctx, text, reply)
	c.opts.Metrics.RecordRoute(string(d.Reason))

	if id, ok := d.Target.Specialist(); ok {
		err := c.engage(ctx, id, text, out)
		if err == nil {
			return
		}
		c.logger.Warn("hand-off refused", zap.String("specialist", id.String()), zap.Error(err))
	}

	c.setPhase(ctx, PhaseAwaitingCounterpart)
	c.completeCycle(ctx)
}

// engage enters SPECIALIST_ENGAGED. Anything but a roster specialist is
// refused and the phase stays ORCHESTRATING.
func (c *Controller) engage(ctx context.Context, id types.Identity, question string, out *Outcome) error {
	if c.session.Phase != PhaseOrchestrating {
		return types.NewError(types.ErrInvalidTransition,
			fmt.Sprintf("cannot engage a specialist from %s", c.session.Phase))
	}
	if !c.roster.IsSpecialist(id) {
		return types.NewError(types.ErrUnknownParticipant, fmt.Sprintf("%q is not a specialist", id))
	}
	if _, err := c.handoffs.Begin(c.roster.Orchestrator(), id, question); err != nil {
		return err
	}

	c.context.Reset(consultationHeader(id.String(), question))
	c.session.Satisfied = false
	c.session.Engaged = handoff.ToSpecialist(id)
	c.setPhase(ctx, PhaseSpecialistEngaged)
	c.emit(ctx, Event{Type: EventHandoff, Speaker: c.roster.Orchestrator(), Target: id, Text: question})
	c.opts.Metrics.RecordHandoffStarted(id.String())

	reply := c.respond(ctx, id, "Client question: "+question, "")
	out.Speaker, out.Reply, out.Specialist = id, reply, id
	return nil
}

func (c *Controller) closeSpecialist(ctx context.Context, s handoff.Satisfaction, out *Outcome) {
	h, err := c.handoffs.Complete(s)
	if err != nil {
		c.logger.Error("no open hand-off to close", zap.Error(err))
	}

	id := out.Specialist
	c.session.Satisfied = true
	c.setPhase(ctx, PhaseAwaitingCounterpart)
	c.emit(ctx, Event{Type: EventClosed, Speaker: id, Target: id, Text: string(s)})
	if h != nil {
		c.opts.Metrics.RecordHandoffClosed(id.String(), string(s), h.Exchanges)
	}

	out.Closed = true
	out.Implicit = s == handoff.SatisfactionImplicit
	c.completeCycle(ctx)
}

// completeCycle advances the turn count, clamped to the ceiling.
func (c *Controller) completeCycle(ctx context.Context) {
	c.session.TurnCount = min(c.session.TurnCount+c.opts.TurnsPerCycle, c.opts.TurnCeiling)
	c.logger.Debug("cycle completed", zap.Int("turn_count", c.session.TurnCount))
	if c.session.TurnCount >= c.opts.TurnCeiling {
		c.terminate(ctx, ReasonTurnCeiling)
	}
}

func (c *Controller) terminate(ctx context.Context, reason TerminationReason) {
	if c.session.Phase == PhaseTerminated {
		return
	}
	if _, open := c.handoffs.Current(); open {
		if h, err := c.handoffs.Abort(); err == nil {
			c.opts.Metrics.RecordHandoffClosed(h.To.String(), string(h.Status), h.Exchanges)
		}
	}

	c.session.Active = false
	c.session.Reason = reason
	c.setPhase(ctx, PhaseTerminated)
	c.emit(ctx, Event{Type: EventTerminated, Text: string(reason)})

	elapsed := c.now().Sub(c.session.StartedAt)
	c.opts.Metrics.RecordSession(string(reason), c.session.TurnCount, elapsed)
	c.logger.Info("session terminated",
		zap.String("reason", string(reason)),
		zap.Int("turn_count", c.session.TurnCount),
		zap.Duration("duration", elapsed),
	)
}

// setPhase moves to p. Leaving SPECIALIST_ENGAGED, or any move to another
// phase, clears the engaged specialist.
func (c *Controller) setPhase(_ context.Context, p Phase) {
	if p != PhaseSpecialistEngaged {
		c.session.Engaged = handoff.NoTarget()
	}
	from := c.session.Phase
	if from == p {
		return
	}
	c.session.Phase = p
	c.opts.Metrics.RecordTransition(string(from), string(p))
	c.logger.Debug("phase transition", zap.String("from", string(from)), zap.String("to", string(p)))
}

// respond invokes the responder once; a failure becomes the inline error
// text and still counts as the speaker's turn.
func (c *Controller) respond(ctx context.Context, speaker types.Identity, message, runningContext string) string {
	ctx, span := c.tracer.Start(ctx, "conversation.respond",
		trace.WithAttributes(attribute.String("speaker", speaker.String())))
	defer span.End()

	rctx := types.WithSpeaker(types.WithSessionID(ctx, c.session.ID), speaker)
	reply, err := c.responder.Respond(rctx, speaker, message, runningContext)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("responder failed",
			zap.String("speaker", speaker.String()),
			zap.Bool("cancelled", errors.Is(err, context.Canceled)),
			zap.Error(err),
		)
		reply = InlineError(speaker, err)
	}
	c.opts.Metrics.RecordTurn(speaker.String(), err != nil)
	c.emit(ctx, Event{Type: EventMessage, Speaker: speaker, Text: reply})
	return reply
}

func (c *Controller) emit(ctx context.Context, ev Event) {
	c.seq++
	ev.SessionID = c.session.ID
	ev.Seq = c.seq
	ev.Phase = c.session.Phase
	ev.Turn = c.session.TurnCount
	ev.Time = c.now()
	c.opts.Sink.Emit(ctx, ev)
}

func (c *Controller) finish(out Outcome) Outcome {
	out.Phase = c.session.Phase
	out.TurnCount = c.session.TurnCount
	out.Terminated = c.session.Phase == PhaseTerminated
	out.Reason = c.session.Reason
	if out.Specialist == "" {
		out.Specialist, _ = c.session.Engaged.Specialist()
	}
	return out
}
