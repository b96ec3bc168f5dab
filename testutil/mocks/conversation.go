package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/chinmaygupta26/elyx/types"
)

// --- MockResponder ---

// ResponderCall records one Respond call.
type ResponderCall struct {
	Speaker types.Identity
	Message string
	Context string
}

// MockResponder answers for any participant. Queued replies are consumed
// in order; otherwise it answers "<speaker>: <message>".
type MockResponder struct {
	mu      sync.Mutex
	replies map[types.Identity][]string
	errs    map[types.Identity]error
	calls   []ResponderCall
	resets  int
}

// NewMockResponder creates an echoing responder.
func NewMockResponder() *MockResponder {
	return &MockResponder{
		replies: make(map[types.Identity][]string),
		errs:    make(map[types.Identity]error),
	}
}

// WithReplies queues replies for speaker.
func (m *MockResponder) WithReplies(speaker types.Identity, replies ...string) *MockResponder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[speaker] = append(m.replies[speaker], replies...)
	return m
}

// WithError makes speaker fail.
func (m *MockResponder) WithError(speaker types.Identity, err error) *MockResponder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[speaker] = err
	return m
}

// Respond implements conversation.Responder.
func (m *MockResponder) Respond(_ context.Context, speaker types.Identity, message, runningContext string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, ResponderCall{Speaker: speaker, Message: message, Context: runningContext})
	if err := m.errs[speaker]; err != nil {
		return "", err
	}
	if q := m.replies[speaker]; len(q) > 0 {
		m.replies[speaker] = q[1:]
		return q[0], nil
	}
	return fmt.Sprintf("%s: %s", speaker, message), nil
}

// ResetHistories implements conversation.HistoryResetter.
func (m *MockResponder) ResetHistories() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
}

// Calls returns the recorded calls.
func (m *MockResponder) Calls() []ResponderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ResponderCall(nil), m.calls...)
}

// Resets returns how often histories were reset.
func (m *MockResponder) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

// --- MockClassifier ---

// MockClassifier returns queued labels, then Fallback.
type MockClassifier struct {
	mu       sync.Mutex
	labels   []string
	Fallback string
	Err      error
	calls    int
}

// NewMockClassifier queues labels.
func NewMockClassifier(labels ...string) *MockClassifier {
	return &MockClassifier{labels: labels}
}

// Classify implements handoff.Classifier.
func (m *MockClassifier) Classify(context.Context, string, string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.labels) > 0 {
		l := m.labels[0]
		m.labels = m.labels[1:]
		return l, nil
	}
	return m.Fallback, nil
}

// CallCount returns the number of Classify calls.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
