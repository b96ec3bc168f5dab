package conversation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chinmaygupta26/elyx/agent/handoff"
	"github.com/chinmaygupta26/elyx/agent/persistence"
	"github.com/chinmaygupta26/elyx/config"
)

func TestDriverConfigs(t *testing.T) {
	cc := config.DefaultConversationConfig()

	ic := InteractiveConfig(cc)
	assert.Zero(t, ic.Controller.ExchangeBudget)
	assert.Zero(t, ic.Controller.InitialTurns)
	assert.Equal(t, DefaultFollowUp, ic.FollowUp)
	assert.Equal(t, 20, ic.Controller.TurnCeiling)
	assert.Equal(t, cc.ExitCommands, ic.Controller.Lexicon.Exit)

	sc := SimulatedConfig(cc)
	assert.Equal(t, 3, sc.Controller.ExchangeBudget)
	assert.Equal(t, 1, sc.Controller.InitialTurns)
	assert.Equal(t, DefaultOpeningLine, sc.OpeningLine)
	assert.Equal(t, 1800, sc.Controller.ContextBudget)
}

// =============================================================================
// Interactive
// =============================================================================

func TestInteractiveDriver_FullSession(t *testing.T) {
	roster := testRoster(t)
	responder := newFakeResponder()
	rec := &Recorder{}
	var prompt bytes.Buffer

	input := strings.NewReader("What tests do I need?\n\nwhat about fasting?\nthanks, got it\nquit\n")
	d := NewInteractiveDriver(roster, responder, labels(roster, "Dr. Warren"), input, DriverConfig{
		Controller: Options{Sink: rec, Logger: zaptest.NewLogger(t)},
		Prompt:     &prompt,
	})

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonExitCommand, res.Reason)
	assert.Equal(t, 3, res.TurnCount)
	require.Len(t, res.Handoffs, 1)
	assert.Equal(t, handoff.SatisfactionExplicit, res.Handoffs[0].Satisfaction)
	assert.Equal(t, 1, res.Handoffs[0].Exchanges)
	assert.NotEmpty(t, res.SessionID)

	assert.Equal(t, 1, responder.resets)
	assert.Equal(t, 5, strings.Count(prompt.String(), "You: "))

	followUps := rec.OfType(EventFollowUp)
	require.Len(t, followUps, 1)
	assert.Equal(t, DefaultFollowUp, followUps[0].Text)
	assert.Len(t, rec.OfType(EventReturned), 1)
}

func TestInteractiveDriver_InputClosed(t *testing.T) {
	roster := testRoster(t)
	d := NewInteractiveDriver(roster, newFakeResponder(), labels(roster), strings.NewReader("hello"), DriverConfig{})

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonInputClosed, res.Reason)
	assert.Equal(t, 3, res.TurnCount)
}

func TestInteractiveDriver_UnboundedSubConversation(t *testing.T) {
	roster := testRoster(t)
	lines := []string{"knee pain"}
	for i := 0; i < 10; i++ {
		lines = append(lines, fmt.Sprintf("follow-up %d", i))
	}
	lines = append(lines, "perfect", "goodbye")

	rec := &Recorder{}
	d := NewInteractiveDriver(roster, newFakeResponder(), labels(roster, "Rachel"),
		strings.NewReader(strings.Join(lines, "\n")), DriverConfig{Controller: Options{Sink: rec}})

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonExitCommand, res.Reason)
	require.Len(t, res.Handoffs, 1)
	assert.Equal(t, 10, res.Handoffs[0].Exchanges)
	assert.Equal(t, "explicit", rec.OfType(EventClosed)[0].Text)
}

func TestInteractiveDriver_Cancelled(t *testing.T) {
	roster := testRoster(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewInteractiveDriver(roster, newFakeResponder(), labels(roster), pr, DriverConfig{})
	res, err := d.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReasonCancelled, res.Reason)
	assert.Zero(t, res.TurnCount)
}

// =============================================================================
// Simulated
// =============================================================================

func TestSimulatedDriver_BudgetThenEnd(t *testing.T) {
	roster := testRoster(t)
	responder := newFakeResponder()
	responder.queue("David Lim",
		"Should I fast before the blood test?",
		"What about my medication?",
		"How long do results take?",
		"Thanks Ruby, that's all I need for now.",
	)
	rec := &Recorder{}

	cfg := SimulatedConfig(config.DefaultConversationConfig())
	cfg.Controller.Sink = rec
	d := NewSimulatedDriver(roster, responder, labels(roster, "Dr. Warren"), cfg)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonEndOfConversation, res.Reason)
	assert.Equal(t, 4, res.TurnCount)
	require.Len(t, res.Handoffs, 1)
	assert.Equal(t, 3, res.Handoffs[0].Exchanges)
	assert.Equal(t, handoff.SatisfactionImplicit, res.Handoffs[0].Satisfaction)

	david := responder.callsFor("David Lim")
	require.Len(t, david, 4)
	assert.Equal(t,
		fmt.Sprintf(specialistFollowUpPrompt, "Dr. Warren: Client question: "+DefaultOpeningLine),
		david[0].Message)
	assert.Equal(t, fmt.Sprintf(specialistFollowUpPrompt, "Dr. Warren: Should I fast before the blood test?"),
		david[1].Message)
	assert.Equal(t, fmt.Sprintf(teamResponsePrompt, DefaultFollowUp), david[3].Message)

	counterpart := rec.Events[1]
	assert.Equal(t, EventMessage, counterpart.Type)
	assert.Equal(t, DefaultOpeningLine, counterpart.Text)
	assert.Equal(t, 1, counterpart.Turn)
}

func TestSimulatedDriver_PlaceholdersUntilCeiling(t *testing.T) {
	roster := testRoster(t)
	responder := newFakeResponder()
	responder.queue("David Lim", "  ", "", "\n")
	rec := &Recorder{}

	d := NewSimulatedDriver(roster, responder, labels(roster), DriverConfig{
		Controller: Options{Sink: rec, InitialTurns: 1},
	})
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonTurnCeiling, res.Reason)
	assert.Equal(t, DefaultTurnCeiling, res.TurnCount)

	var counterpart []string
	for _, ev := range rec.OfType(EventMessage) {
		if ev.Speaker == roster.Counterpart() {
			counterpart = append(counterpart, ev.Text)
		}
	}
	require.Len(t, counterpart, 7)
	assert.Equal(t, DefaultOpeningLine, counterpart[0])
	assert.Equal(t, noReplyPlaceholder, counterpart[1])
	assert.Equal(t, noReplyPlaceholder, counterpart[3])
	assert.True(t, strings.HasPrefix(counterpart[4], "David Lim: Response from team: "))
}

func TestSimulatedDriver_CounterpartErrorIsInline(t *testing.T) {
	roster := testRoster(t)
	responder := newFakeResponder()
	responder.errs["David Lim"] = errors.New("model overloaded")
	rec := &Recorder{}

	d := NewSimulatedDriver(roster, responder, labels(roster), DriverConfig{
		Controller: Options{Sink: rec, TurnCeiling: 6},
	})
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonTurnCeiling, res.Reason)

	msgs := rec.OfType(EventMessage)
	var inline int
	for _, m := range msgs {
		if m.Text == "(Error from David Lim: model overloaded)" {
			inline++
		}
	}
	assert.Equal(t, 1, inline)
}

func TestSimulatedDriver_Cancelled(t *testing.T) {
	roster := testRoster(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewSimulatedDriver(roster, newFakeResponder(), labels(roster), SimulatedConfig(config.DefaultConversationConfig()))
	res, err := d.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReasonCancelled, res.Reason)
	assert.Equal(t, 1, res.TurnCount)
}

func TestSimulatedDriver_Defaults(t *testing.T) {
	d := NewSimulatedDriver(testRoster(t), newFakeResponder(), nil, DriverConfig{})
	assert.Equal(t, DefaultSimulatedExchanges, d.cfg.Controller.ExchangeBudget)
	assert.Equal(t, DefaultOpeningLine, d.cfg.OpeningLine)
	assert.Equal(t, DefaultFollowUp, d.cfg.FollowUp)
}

// =============================================================================
// Rendering and transcripts
// =============================================================================

func TestConsoleRenderer_Simulated(t *testing.T) {
	roster := testRoster(t)
	responder := newFakeResponder()
	responder.queue("Dr. Warren", "Get a lipid panel.\nAnd an ECG.")
	responder.queue("David Lim", "ok", "and?", "hmm", "see you")
	var out bytes.Buffer

	cfg := SimulatedConfig(config.DefaultConversationConfig())
	cfg.Controller.Sink = NewConsoleRenderer(&out, roster,
		WithCounterpartEcho(true), WithBanner(SimulatedBanner(roster.Counterpart())))
	_, err := NewSimulatedDriver(roster, responder, labels(roster, "Dr. Warren"), cfg).Run(context.Background())
	require.NoError(t, err)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "🎯 Starting simulated conversation with David Lim...\n"))
	assert.Contains(t, text, "👤 David Lim (Client):\n"+DefaultOpeningLine+"\n\n")
	assert.Contains(t, text, "🔄 Connecting you with Dr. Warren...")
	assert.Contains(t, text, "🩺 Dr. Warren (Medical Strategist):\nGet a lipid panel.\nAnd an ECG.\n")
	assert.Contains(t, text, "✅ Dr. Warren consultation completed after maximum turns.")
	assert.Contains(t, text, "🔄 Returning to Ruby for follow-up...")
	assert.Contains(t, text, "🎯 Ruby (Orchestrator & Concierge):\n"+DefaultFollowUp)
	assert.Contains(t, text, "✅ Conversation ended.")
	assert.Contains(t, text, "📊 Total turns: 4")
}

func TestConsoleRenderer_Interactive(t *testing.T) {
	roster := testRoster(t)
	var out bytes.Buffer

	d := NewInteractiveDriver(roster, newFakeResponder(), labels(roster, "Carla"),
		strings.NewReader("lunch ideas?\ngot it"), DriverConfig{
			Controller: Options{Sink: NewConsoleRenderer(&out, roster)},
		})
	_, err := d.Run(context.Background())
	require.NoError(t, err)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "🎯 Welcome to Elyx! Ruby is here to help you."))
	assert.NotContains(t, text, "David Lim (Client)")
	assert.Contains(t, text, "✅ Carla is glad to have helped! Returning you to Ruby...")
	assert.Contains(t, text, "(Input stream closed.)")
	assert.Contains(t, text, "📊 Total turns: 3")
}

func TestTranscriptSink_RecordsAndReplays(t *testing.T) {
	ctx := context.Background()
	roster := testRoster(t)
	store := persistence.NewMemoryTranscriptStore()
	live := &Recorder{}

	d := NewInteractiveDriver(roster, newFakeResponder(), labels(roster, "Neel"),
		strings.NewReader("book a scan\nthank you\nbye"), DriverConfig{
			Controller: Options{
				SessionID: "s-replay",
				Sink:      MultiSink{live, NewTranscriptSink(store, zaptest.NewLogger(t))},
			},
		})
	_, err := d.Run(ctx)
	require.NoError(t, err)

	replayed := &Recorder{}
	events, err := Replay(ctx, store, "s-replay", replayed)
	require.NoError(t, err)
	require.Len(t, events, len(live.Events))
	assert.Equal(t, eventTypes(live.Events), eventTypes(replayed.Events))
	for i := range events {
		assert.Equal(t, live.Events[i].Text, events[i].Text)
		assert.Equal(t, live.Events[i].Speaker, events[i].Speaker)
		assert.Equal(t, live.Events[i].Target, events[i].Target)
		assert.Equal(t, live.Events[i].Phase, events[i].Phase)
	}

	_, err = Replay(ctx, store, "missing", nil)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestTranscriptSink_StoreErrorsDoNotStopSession(t *testing.T) {
	roster := testRoster(t)
	store := persistence.NewMemoryTranscriptStore()
	require.NoError(t, store.Close())

	d := NewInteractiveDriver(roster, newFakeResponder(), labels(roster), strings.NewReader("hi\nbye"),
		DriverConfig{Controller: Options{Sink: NewTranscriptSink(store, nil)}})
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonExitCommand, res.Reason)
}

func TestMultiSink_SkipsNil(t *testing.T) {
	a := &Recorder{}
	MultiSink{nil, a, NopSink{}}.Emit(context.Background(), Event{Type: EventMessage})
	assert.Len(t, a.Events, 1)
}
