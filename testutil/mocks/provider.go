// Package mocks provides test doubles for Elyx collaborators.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/chinmaygupta26/elyx/llm"
	"github.com/chinmaygupta26/elyx/types"
)

// --- MockProvider ---

// MockProvider is a scripted llm.Provider. Replies queued for a caller
// (ChatRequest.Caller) are consumed in order; afterwards the default
// response is returned.
type MockProvider struct {
	mu sync.Mutex

	response string
	err      error
	byCaller map[string][]string
	errs     map[string]error

	promptTokens     int
	completionTokens int

	delay     time.Duration
	failAfter int
	calls     []MockProviderCall
}

// MockProviderCall records one Completion call.
type MockProviderCall struct {
	Request  *llm.ChatRequest
	Response *llm.ChatResponse
	Error    error
}

// NewMockProvider creates a provider answering "Mock response".
func NewMockProvider() *MockProvider {
	return &MockProvider{
		response:         "Mock response",
		byCaller:         make(map[string][]string),
		errs:             make(map[string]error),
		promptTokens:     10,
		completionTokens: 20,
	}
}

// WithResponse sets the default reply.
func (m *MockProvider) WithResponse(response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithError makes every call fail with err.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithCallerResponses queues replies for caller.
func (m *MockProvider) WithCallerResponses(caller string, replies ...string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byCaller[caller] = append(m.byCaller[caller], replies...)
	return m
}

// WithCallerError makes every call from caller fail with err.
func (m *MockProvider) WithCallerError(caller string, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[caller] = err
	return m
}

// WithTokenUsage sets the reported usage.
func (m *MockProvider) WithTokenUsage(prompt, completion int) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promptTokens = prompt
	m.completionTokens = completion
	return m
}

// WithDelay delays every reply; the delay honours context cancellation.
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithFailAfter fails every call after the first n.
func (m *MockProvider) WithFailAfter(n int) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	return m
}

// --- llm.Provider ---

// Name implements llm.Provider.
func (m *MockProvider) Name() string { return "mock" }

// Completion implements llm.Provider.
func (m *MockProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, m.record(req, nil, ctx.Err())
		case <-time.After(delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, m.record(req, nil, err)
	}

	m.mu.Lock()
	resp, err := m.next(req)
	m.calls = append(m.calls, MockProviderCall{Request: req, Response: resp, Error: err})
	m.mu.Unlock()
	return resp, err
}

// next picks the reply for req. Caller holds m.mu.
func (m *MockProvider) next(req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if m.failAfter > 0 && len(m.calls) >= m.failAfter {
		return nil, types.NewError(types.ErrUpstreamError, "mock provider exhausted").WithProvider("mock")
	}
	if m.err != nil {
		return nil, m.err
	}
	if err := m.errs[req.Caller]; err != nil {
		return nil, err
	}

	content := m.response
	if queue := m.byCaller[req.Caller]; len(queue) > 0 {
		content = queue[0]
		m.byCaller[req.Caller] = queue[1:]
	}
	return &llm.ChatResponse{
		Provider: "mock",
		Model:    req.Model,
		Content:  content,
		Usage: llm.ChatUsage{
			PromptTokens:     m.promptTokens,
			CompletionTokens: m.completionTokens,
			TotalTokens:      m.promptTokens + m.completionTokens,
		},
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockProvider) record(req *llm.ChatRequest, resp *llm.ChatResponse, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockProviderCall{Request: req, Response: resp, Error: err})
	return err
}

// --- Inspection ---

// Calls returns every recorded call.
func (m *MockProvider) Calls() []MockProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockProviderCall(nil), m.calls...)
}

// CallCount returns the number of calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// CallsFor returns the requests made on behalf of caller.
func (m *MockProvider) CallsFor(caller string) []*llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*llm.ChatRequest
	for _, c := range m.calls {
		if c.Request != nil && c.Request.Caller == caller {
			out = append(out, c.Request)
		}
	}
	return out
}

// Reset drops recorded calls and queued replies.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.byCaller = make(map[string][]string)
}
