package conversation

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/chinmaygupta26/elyx/agent/handoff"
	"github.com/chinmaygupta26/elyx/types"
)

const (
	interactiveBanner = "🎯 Welcome to Elyx! Ruby is here to help you.\nType 'quit' or 'exit' to end the conversation.\n"
	simulatedBanner   = "🎯 Starting simulated conversation with %s...\n"
)

// ConsoleRenderer prints events in the chat layout:
//
//	🎯 Ruby (Orchestrator & Concierge):
//	Hello!
type ConsoleRenderer struct {
	w      io.Writer
	roster *types.Roster
	echo   bool
	banner string
	mu     sync.Mutex
}

// RenderOption configures a ConsoleRenderer.
type RenderOption func(*ConsoleRenderer)

// WithCounterpartEcho prints counterpart messages too. Interactive sessions
// leave it off because the user already typed them.
func WithCounterpartEcho(echo bool) RenderOption {
	return func(r *ConsoleRenderer) { r.echo = echo }
}

// WithBanner replaces the session start line.
func WithBanner(banner string) RenderOption {
	return func(r *ConsoleRenderer) { r.banner = banner }
}

// SimulatedBanner is the start line of simulated sessions.
func SimulatedBanner(counterpart types.Identity) string {
	return fmt.Sprintf(simulatedBanner, counterpart)
}

// NewConsoleRenderer creates a renderer writing to w.
func NewConsoleRenderer(w io.Writer, roster *types.Roster, opts ...RenderOption) *ConsoleRenderer {
	r := &ConsoleRenderer{w: w, roster: roster, banner: interactiveBanner}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Emit renders ev.
func (r *ConsoleRenderer) Emit(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orch := r.roster.Orchestrator()
	switch ev.Type {
	case EventSessionStarted:
		fmt.Fprintln(r.w, r.banner)
	case EventMessage:
		if ev.Speaker == r.roster.Counterpart() && !r.echo {
			return
		}
		r.message(ev.Speaker, ev.Text)
	case EventFollowUp:
		r.message(ev.Speaker, ev.Text)
	case EventHandoff:
		fmt.Fprintf(r.w, "\n🔄 Connecting you with %s...\n\n", ev.Target)
	case EventClosed:
		if ev.Text == string(handoff.SatisfactionImplicit) {
			fmt.Fprintf(r.w, "\n✅ %s consultation completed after maximum turns.\n", ev.Target)
		} else {
			fmt.Fprintf(r.w, "\n✅ %s is glad to have helped! Returning you to %s...\n", ev.Target, orch)
		}
	case EventReturned:
		fmt.Fprintf(r.w, "\n🔄 Returning to %s for follow-up...\n", orch)
	case EventTerminated:
		switch TerminationReason(ev.Text) {
		case ReasonInputClosed:
			fmt.Fprintln(r.w, "\n(Input stream closed.)")
		case ReasonExitCommand:
			fmt.Fprintln(r.w, "\n👋 Thank you for using Elyx! Have a great day!")
		}
		fmt.Fprintln(r.w, "\n✅ Conversation ended.")
		fmt.Fprintf(r.w, "📊 Total turns: %d\n", ev.Turn)
	}
}

func (r *ConsoleRenderer) message(speaker types.Identity, text string) {
	fmt.Fprintf(r.w, "%s %s (%s):\n%s\n\n", r.roster.Icon(speaker), speaker, r.roster.Title(speaker), text)
}
