package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chinmaygupta26/elyx/agent/handoff"
	"github.com/chinmaygupta26/elyx/types"
)

func testRoster(t testing.TB) *types.Roster {
	t.Helper()
	r, err := types.NewRoster(
		types.Descriptor{ID: "Ruby", Kind: types.KindOrchestrator, Title: "Orchestrator & Concierge", Icon: "🎯"},
		types.Descriptor{ID: "Dr. Warren", Kind: types.KindSpecialist, Title: "Medical Strategist", Icon: "🩺"},
		types.Descriptor{ID: "Advik", Kind: types.KindSpecialist, Title: "Performance Scientist", Icon: "📊"},
		types.Descriptor{ID: "Carla", Kind: types.KindSpecialist, Title: "Nutritionist", Icon: "🥗"},
		types.Descriptor{ID: "Rachel", Kind: types.KindSpecialist, Title: "PT / Physiotherapist", Icon: "🏋️"},
		types.Descriptor{ID: "Neel", Kind: types.KindSpecialist, Title: "Concierge Lead", Icon: "📋"},
		types.Descriptor{ID: "Router", Kind: types.KindRouter},
		types.Descriptor{ID: "David Lim", Kind: types.KindCounterpart, Title: "Client", Icon: "👤"},
	)
	require.NoError(t, err)
	return r
}

type call struct {
	Speaker types.Identity
	Message string
	Context string
}

// fakeResponder answers "<speaker>: <message>" unless a reply or error is
// queued for the speaker.
type fakeResponder struct {
	mu      sync.Mutex
	calls   []call
	replies map[types.Identity][]string
	errs    map[types.Identity]error
	resets  int
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{
		replies: make(map[types.Identity][]string),
		errs:    make(map[types.Identity]error),
	}
}

func (f *fakeResponder) Respond(_ context.Context, speaker types.Identity, message, runningContext string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{speaker, message, runningContext})
	if err := f.errs[speaker]; err != nil {
		return "", err
	}
	if q := f.replies[speaker]; len(q) > 0 {
		f.replies[speaker] = q[1:]
		return q[0], nil
	}
	return fmt.Sprintf("%s: %s", speaker, message), nil
}

func (f *fakeResponder) ResetHistories() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

func (f *fakeResponder) queue(speaker types.Identity, replies ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[speaker] = append(f.replies[speaker], replies...)
}

func (f *fakeResponder) callsFor(speaker types.Identity) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Speaker == speaker {
			out = append(out, c)
		}
	}
	return out
}

// labels returns a router that hands out labels in order, then "Ruby".
func labels(roster *types.Roster, seq ...string) *handoff.Router {
	var mu sync.Mutex
	return handoff.NewRouter(handoff.ClassifierFunc(func(context.Context, string, string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(seq) == 0 {
			return "Ruby", nil
		}
		l := seq[0]
		seq = seq[1:]
		return l, nil
	}), roster, nil)
}

func failingRouter(roster *types.Roster) *handoff.Router {
	return handoff.NewRouter(handoff.ClassifierFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("router down")
	}), roster, nil)
}

type transition struct{ From, To string }

type fakeMetrics struct {
	turns       map[string]int
	failed      int
	routes      []string
	started     []string
	closed      []string
	transitions []transition
	sessions    []string
	lastTurns   int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{turns: map[string]int{}} }

func (m *fakeMetrics) RecordTurn(speaker string, failed bool) {
	m.turns[speaker]++
	if failed {
		m.failed++
	}
}
func (m *fakeMetrics) RecordRoute(reason string)     { m.routes = append(m.routes, reason) }
func (m *fakeMetrics) RecordHandoffStarted(s string) { m.started = append(m.started, s) }
func (m *fakeMetrics) RecordHandoffClosed(s, o string, _ int) {
	m.closed = append(m.closed, s+":"+o)
}
func (m *fakeMetrics) RecordTransition(from, to string) {
	m.transitions = append(m.transitions, transition{from, to})
}
func (m *fakeMetrics) RecordSession(reason string, turns int, _ time.Duration) {
	m.sessions = append(m.sessions, reason)
	m.lastTurns = turns
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}
