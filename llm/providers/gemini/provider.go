// Package gemini implements llm.Provider on the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/chinmaygupta26/elyx/llm"
	"github.com/chinmaygupta26/elyx/types"
)

const (
	providerName = "gemini"
	// DefaultModel is used when neither the request nor the config names one.
	DefaultModel = "gemini-2.5-pro"
)

// generator is the slice of *genai.Models this provider needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures the provider.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// Provider talks to Gemini.
type Provider struct {
	models generator
	cfg    Config
	logger *zap.Logger
}

// New creates a Gemini client.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, types.NewError(types.ErrUnauthorized, "gemini api key is required").WithProvider(providerName)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, types.NewError(types.ErrProviderUnavailable, "create gemini client").
			WithCause(err).WithProvider(providerName)
	}
	return newWithGenerator(client.Models, cfg, logger), nil
}

func newWithGenerator(g generator, cfg Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Provider{
		models: g,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "provider"), zap.String("provider", providerName)),
	}
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return providerName }

// Completion implements llm.Provider.
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	cfg, contents, err := p.convRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := p.models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, types.NewError(types.ErrEmptyResponse, "gemini returned no candidates").WithProvider(providerName)
	}

	cand := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	out := &llm.ChatResponse{
		Provider:     providerName,
		Model:        model,
		Content:      sb.String(),
		FinishReason: string(cand.FinishReason),
		CreatedAt:    time.Now(),
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = llm.ChatUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	p.logger.Debug("completion",
		zap.String("model", model),
		zap.String("finish_reason", out.FinishReason),
		zap.Int("completion_tokens", out.Usage.CompletionTokens),
	)
	return out, nil
}

func (p *Provider) convRequest(req *llm.ChatRequest) (*genai.GenerateContentConfig, []*genai.Content, error) {
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(req.System)}}
	}
	temp := req.Temperature
	cfg.Temperature = &temp

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.cfg.MaxTokens
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role == llm.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(m.Content)},
		})
	}
	if len(contents) == 0 {
		return nil, nil, types.NewError(types.ErrInvalidRequest, "no messages").WithProvider(providerName)
	}
	return cfg, contents, nil
}

// mapError translates SDK errors into coded, retry-aware errors.
func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return types.NewError(types.ErrUpstreamTimeout, "gemini request interrupted").
			WithCause(err).WithProvider(providerName)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.Code, fmt.Sprintf("gemini: %s", apiErr.Message), err)
	}
	return types.NewError(types.ErrUpstreamError, "gemini request failed").
		WithCause(err).WithRetryable(true).WithProvider(providerName)
}

func fromStatus(status int, msg string, cause error) error {
	e := types.NewError(types.ErrUpstreamError, msg).WithCause(cause).WithProvider(providerName)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Code = types.ErrUnauthorized
	case status == http.StatusTooManyRequests:
		e.Code = types.ErrRateLimited
		e.Retryable = true
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		e.Code = types.ErrInvalidRequest
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		e.Code = types.ErrUpstreamTimeout
		e.Retryable = true
	case status >= 500:
		e.Retryable = true
	}
	return e
}
