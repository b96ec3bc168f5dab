// Package factory builds the configured llm.Provider stack.
package factory

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/config"
	"github.com/chinmaygupta26/elyx/llm"
	"github.com/chinmaygupta26/elyx/llm/providers/anthropic"
	"github.com/chinmaygupta26/elyx/llm/providers/gemini"
	"github.com/chinmaygupta26/elyx/llm/retry"
)

// Options carries optional instrumentation.
type Options struct {
	Observer llm.RequestObserver
	Tracer   trace.Tracer
}

// NewProvider returns the backend named by cfg.Provider wrapped in a
// ResilientProvider.
func NewProvider(ctx context.Context, cfg config.LLMConfig, opts Options, logger *zap.Logger) (*llm.ResilientProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var inner llm.Provider
	switch cfg.Provider {
	case "gemini":
		p, err := gemini.New(ctx, gemini.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		}, logger)
		if err != nil {
			return nil, err
		}
		inner = p
	case "anthropic":
		inner = anthropic.New(anthropic.Config{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q (supported: gemini, anthropic)", cfg.Provider)
	}

	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.MaxRetries

	var ropts []llm.ResilientOption
	if opts.Observer != nil {
		ropts = append(ropts, llm.WithObserver(opts.Observer))
	}
	if opts.Tracer != nil {
		ropts = append(ropts, llm.WithTracer(opts.Tracer))
	}

	return llm.NewResilientProvider(inner, llm.ResilientConfig{
		Retry:     policy,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimitRPS,
		Burst:     cfg.RateLimitBurst,
	}, logger, ropts...), nil
}
