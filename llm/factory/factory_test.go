package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/config"
	"github.com/chinmaygupta26/elyx/types"
)

func TestNewProvider_Anthropic(t *testing.T) {
	cfg := config.DefaultLLMConfig()
	cfg.Provider = "anthropic"
	cfg.APIKey = "test-key"
	cfg.Model = ""

	p, err := NewProvider(context.Background(), cfg, Options{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())
}

func TestNewProvider_GeminiNeedsKey(t *testing.T) {
	cfg := config.DefaultLLMConfig()
	cfg.APIKey = ""

	_, err := NewProvider(context.Background(), cfg, Options{}, nil)
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrUnauthorized))
}

func TestNewProvider_Unknown(t *testing.T) {
	cfg := config.DefaultLLMConfig()
	cfg.Provider = "eliza"

	_, err := NewProvider(context.Background(), cfg, Options{}, nil)
	assert.ErrorContains(t, err, "unsupported llm provider")
}
