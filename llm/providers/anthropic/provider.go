// Package anthropic implements llm.Provider on the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/llm"
	"github.com/chinmaygupta26/elyx/types"
)

const (
	providerName = "anthropic"
	// DefaultModel is used when neither the request nor the config names one.
	DefaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 1024
)

type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Config configures the provider.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// Provider talks to Claude.
type Provider struct {
	messages messageCreator
	cfg      Config
	logger   *zap.Logger
}

// New creates a client. An empty APIKey falls back to ANTHROPIC_API_KEY.
func New(cfg Config, logger *zap.Logger) *Provider {
	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	// retries happen in llm.ResilientProvider
	opts = append(opts, option.WithMaxRetries(0))

	client := anthropic.NewClient(opts...)
	return newWithCreator(&client.Messages, cfg, logger)
}

func newWithCreator(m messageCreator, cfg Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &Provider{
		messages: m,
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "provider"), zap.String("provider", providerName)),
	}
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return providerName }

// Completion implements llm.Provider.
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if len(req.Messages) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "no messages").WithProvider(providerName)
	}

	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.cfg.MaxTokens
	}

	msgs := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == llm.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Messages:    msgs,
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := p.messages.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}

	var parts []string
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}

	out := &llm.ChatResponse{
		Provider:     providerName,
		Model:        model,
		Content:      strings.Join(parts, ""),
		FinishReason: string(resp.StopReason),
		Usage: llm.ChatUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
		CreatedAt: time.Now(),
	}
	p.logger.Debug("completion",
		zap.String("model", model),
		zap.String("stop_reason", out.FinishReason),
		zap.Int("completion_tokens", out.Usage.CompletionTokens),
	)
	return out, nil
}

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return types.NewError(types.ErrUpstreamTimeout, "anthropic request interrupted").
			WithCause(err).WithProvider(providerName)
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.StatusCode, err)
	}
	return types.NewError(types.ErrUpstreamError, "anthropic request failed").
		WithCause(err).WithRetryable(true).WithProvider(providerName)
}

func fromStatus(status int, cause error) *types.Error {
	e := types.NewError(types.ErrUpstreamError, "anthropic: "+http.StatusText(status)).
		WithCause(cause).WithProvider(providerName)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Code = types.ErrUnauthorized
	case status == http.StatusTooManyRequests:
		e.Code = types.ErrRateLimited
		e.Retryable = true
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		e.Code = types.ErrInvalidRequest
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		e.Code = types.ErrUpstreamTimeout
		e.Retryable = true
	case status >= 500:
		// 529 overloaded included
		e.Retryable = true
	}
	return e
}
