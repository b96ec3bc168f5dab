package llm

import (
	"context"
	"time"
)

// Role of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn sent to a model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single, non-streaming completion request.
type ChatRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
	// Timeout overrides the per-attempt deadline of ResilientProvider when positive.
	Timeout time.Duration `json:"timeout,omitempty"`
	// Caller is the participant on whose behalf the request is made; used for metrics only.
	Caller string `json:"caller,omitempty"`
}

// ChatUsage reports token counts when the backend returns them.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse is the text produced for a ChatRequest.
type ChatResponse struct {
	Provider     string    `json:"provider,omitempty"`
	Model        string    `json:"model"`
	Content      string    `json:"content"`
	FinishReason string    `json:"finish_reason,omitempty"`
	Usage        ChatUsage `json:"usage,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Provider is the boundary to a text-generation backend.
type Provider interface {
	// Completion runs one request and returns the full response.
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	// Name identifies the backend, e.g. "gemini".
	Name() string
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

// Completion calls f.
func (f ProviderFunc) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	return f(ctx, req)
}

// Name returns "func".
func (f ProviderFunc) Name() string { return "func" }
