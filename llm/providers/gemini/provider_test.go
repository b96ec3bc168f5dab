package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/chinmaygupta26/elyx/llm"
	"github.com/chinmaygupta26/elyx/types"
)

type fakeModels struct {
	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
	resp        *genai.GenerateContentResponse
	err         error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel, f.gotContents, f.gotConfig = model, contents, cfg
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	ps := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		ps = append(ps, genai.NewPartFromText(p))
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: "model", Parts: ps},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     12,
			CandidatesTokenCount: 4,
			TotalTokenCount:      16,
		},
	}
}

func TestProvider_Completion(t *testing.T) {
	fake := &fakeModels{resp: textResponse("Hello ", "David")}
	p := newWithGenerator(fake, Config{MaxTokens: 256}, zap.NewNop())

	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		System:      "You are Ruby.",
		Temperature: 0.7,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "hi"},
			{Role: llm.RoleAssistant, Content: "hello"},
			{Role: llm.RoleUser, Content: "tests?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello David", resp.Content)
	assert.Equal(t, DefaultModel, resp.Model)
	assert.Equal(t, 12, resp.Usage.PromptTokens)
	assert.Equal(t, 4, resp.Usage.CompletionTokens)

	assert.Equal(t, DefaultModel, fake.gotModel)
	require.Len(t, fake.gotContents, 3)
	assert.Equal(t, "user", fake.gotContents[0].Role)
	assert.Equal(t, "model", fake.gotContents[1].Role)
	require.NotNil(t, fake.gotConfig.SystemInstruction)
	assert.Equal(t, "You are Ruby.", fake.gotConfig.SystemInstruction.Parts[0].Text)
	require.NotNil(t, fake.gotConfig.Temperature)
	assert.InDelta(t, 0.7, *fake.gotConfig.Temperature, 1e-6)
	assert.Equal(t, int32(256), fake.gotConfig.MaxOutputTokens)
}

func TestProvider_RequestModelWins(t *testing.T) {
	fake := &fakeModels{resp: textResponse("ok")}
	p := newWithGenerator(fake, Config{Model: "gemini-2.5-flash"}, nil)

	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Model:    "gemini-custom",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "gemini-custom", fake.gotModel)
	assert.Equal(t, "gemini", p.Name())
}

func TestProvider_NoMessages(t *testing.T) {
	p := newWithGenerator(&fakeModels{}, Config{}, nil)
	_, err := p.Completion(context.Background(), &llm.ChatRequest{})
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidRequest))
}

func TestProvider_NoCandidates(t *testing.T) {
	p := newWithGenerator(&fakeModels{resp: &genai.GenerateContentResponse{}}, Config{}, nil)
	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "x"}},
	})
	assert.True(t, types.IsErrorCode(err, types.ErrEmptyResponse))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      types.ErrorCode
		retryable bool
	}{
		{"rate limited", genai.APIError{Code: http.StatusTooManyRequests, Message: "quota"}, types.ErrRateLimited, true},
		{"unauthorized", genai.APIError{Code: http.StatusForbidden, Message: "key"}, types.ErrUnauthorized, false},
		{"bad request", genai.APIError{Code: http.StatusBadRequest, Message: "bad"}, types.ErrInvalidRequest, false},
		{"server", fmt.Errorf("wrapped: %w", genai.APIError{Code: http.StatusServiceUnavailable}), types.ErrUpstreamError, true},
		{"deadline", context.DeadlineExceeded, types.ErrUpstreamTimeout, false},
		{"network", errors.New("connection reset"), types.ErrUpstreamError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(tt.err)
			assert.Equal(t, tt.code, types.GetErrorCode(err))
			assert.Equal(t, tt.retryable, types.IsRetryable(err))
		})
	}
}

func TestMapError_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	assert.ErrorIs(t, mapError(cause), cause)
	assert.ErrorIs(t, mapError(context.Canceled), context.Canceled)
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	assert.True(t, types.IsErrorCode(err, types.ErrUnauthorized))
}
