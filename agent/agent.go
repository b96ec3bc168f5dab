package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/llm"
	"github.com/chinmaygupta26/elyx/types"
)

const contextHeading = "\n\nConversation context (recent):\n"

// DefaultHistoryLimit caps the exchanges an agent remembers.
const DefaultHistoryLimit = 50

// Config holds model settings shared by every agent of a team.
type Config struct {
	Model     string        `json:"model" yaml:"model"`
	MaxTokens int           `json:"max_tokens" yaml:"max_tokens"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
	// HistoryLimit bounds Agent.History; 0 means DefaultHistoryLimit.
	HistoryLimit int `json:"history_limit" yaml:"history_limit"`
}

// Exchange is one message and the agent's reply.
type Exchange struct {
	Message string    `json:"message"`
	Reply   string    `json:"reply"`
	At      time.Time `json:"at"`
}

// Agent is one participant persona bound to a model provider.
// Its history belongs to it alone and is cleared between sessions.
type Agent struct {
	desc     types.Descriptor
	provider llm.Provider
	config   Config
	history  []Exchange
	logger   *zap.Logger
	mu       sync.Mutex
}

// New creates an agent for desc.
func New(desc types.Descriptor, provider llm.Provider, config Config, logger *zap.Logger) (*Agent, error) {
	if desc.ID == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "agent identity is empty")
	}
	if provider == nil {
		return nil, types.NewError(types.ErrInvalidRequest, "provider is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = DefaultHistoryLimit
	}
	return &Agent{
		desc:     desc,
		provider: provider,
		config:   config,
		logger:   logger.With(zap.String("component", "agent"), zap.String("agent", string(desc.ID))),
	}, nil
}

// ID returns the participant identity.
func (a *Agent) ID() types.Identity { return a.desc.ID }

// Descriptor returns the static description.
func (a *Agent) Descriptor() types.Descriptor { return a.desc }

// SystemPrompt is the persona, followed by the running context when set.
func (a *Agent) SystemPrompt(runningContext string) string {
	prompt := strings.TrimSpace(a.desc.Persona)
	if runningContext != "" {
		prompt += contextHeading + runningContext
	}
	return prompt
}

// Respond sends message to the model under this persona and returns the
// trimmed reply. Blank model output is an EMPTY_RESPONSE error.
func (a *Agent) Respond(ctx context.Context, message, runningContext string) (string, error) {
	req := &llm.ChatRequest{
		Model:       a.config.Model,
		System:      a.SystemPrompt(runningContext),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: message}},
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.desc.Temperature,
		Timeout:     a.config.Timeout,
		Caller:      string(a.desc.ID),
	}

	logger := a.logger
	if sid, ok := types.SessionID(ctx); ok {
		logger = logger.With(zap.String("session_id", sid))
	}

	start := time.Now()
	resp, err := a.provider.Completion(ctx, req)
	if err != nil {
		logger.Warn("completion failed", zap.Duration("latency", time.Since(start)), zap.Error(err))
		return "", err
	}

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return "", types.NewError(types.ErrEmptyResponse,
			fmt.Sprintf("%s returned no text", a.desc.ID)).WithProvider(resp.Provider)
	}

	a.remember(message, reply)
	logger.Debug("replied",
		zap.Duration("latency", time.Since(start)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return reply, nil
}

func (a *Agent) remember(message, reply string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, Exchange{Message: message, Reply: reply, At: time.Now()})
	if over := len(a.history) - a.config.HistoryLimit; over > 0 {
		a.history = append([]Exchange(nil), a.history[over:]...)
	}
}

// History returns a copy of the remembered exchanges, oldest first.
func (a *Agent) History() []Exchange {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Exchange(nil), a.history...)
}

// ResetHistory forgets every exchange.
func (a *Agent) ResetHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}
