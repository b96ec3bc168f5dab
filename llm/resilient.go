package llm

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chinmaygupta26/elyx/llm/retry"
	"github.com/chinmaygupta26/elyx/types"
)

// RequestObserver receives one record per model call (after retries).
type RequestObserver interface {
	RecordLLMRequest(provider, model, status string, duration time.Duration, promptTokens, completionTokens int)
}

// ResilientConfig configures ResilientProvider.
type ResilientConfig struct {
	Retry retry.Policy
	// Timeout bounds each attempt; 0 means no extra deadline.
	// ChatRequest.Timeout overrides it per request.
	Timeout time.Duration
	// RateLimit in requests per second; 0 disables the limiter.
	RateLimit float64
	Burst     int
}

// ResilientProvider adds bounded retry, client-side rate limiting, metrics
// and tracing around another Provider. Retrying is confined to this layer.
type ResilientProvider struct {
	inner    Provider
	retryer  *retry.Retryer
	limiter  *rate.Limiter
	timeout  time.Duration
	observer RequestObserver
	tracer   trace.Tracer
	logger   *zap.Logger
}

// ResilientOption customises a ResilientProvider.
type ResilientOption func(*ResilientProvider)

// WithObserver records each call.
func WithObserver(o RequestObserver) ResilientOption {
	return func(p *ResilientProvider) { p.observer = o }
}

// WithTracer spans each call.
func WithTracer(t trace.Tracer) ResilientOption {
	return func(p *ResilientProvider) { p.tracer = t }
}

// NewResilientProvider wraps inner.
func NewResilientProvider(inner Provider, cfg ResilientConfig, logger *zap.Logger, opts ...ResilientOption) *ResilientProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &ResilientProvider{
		inner:   inner,
		retryer: retry.New(cfg.Retry, logger),
		timeout: cfg.Timeout,
		logger:  logger.With(zap.String("component", "llm"), zap.String("provider", inner.Name())),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the wrapped provider's name.
func (p *ResilientProvider) Name() string { return p.inner.Name() }

// Completion implements Provider.
func (p *ResilientProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, types.NewError(types.ErrInvalidRequest, "nil chat request")
	}

	if p.tracer != nil {
		var span trace.Span
		ctx, span = p.tracer.Start(ctx, "llm.completion", trace.WithAttributes(
			attribute.String("llm.provider", p.inner.Name()),
			attribute.String("llm.model", req.Model),
			attribute.String("elyx.caller", req.Caller),
		))
		defer span.End()
		resp, err := p.complete(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return resp, err
	}
	return p.complete(ctx, req)
}

func (p *ResilientProvider) complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	timeout := p.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}

	resp, err := retry.Do(ctx, p.retryer, func(ctx context.Context) (*ChatResponse, error) {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		attemptCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		resp, err := p.inner.Completion(attemptCtx, req)
		if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			// only this attempt's deadline expired; the caller is still waiting
			return nil, types.NewError(types.ErrUpstreamTimeout, "attempt timed out").
				WithCause(err).WithRetryable(true).WithProvider(p.inner.Name())
		}
		return resp, err
	})

	elapsed := time.Since(start)
	status := "success"
	if err != nil {
		status = "error"
		p.logger.Warn("completion failed",
			zap.String("caller", req.Caller),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}
	if p.observer != nil {
		var prompt, completion int
		if resp != nil {
			prompt, completion = resp.Usage.PromptTokens, resp.Usage.CompletionTokens
		}
		p.observer.RecordLLMRequest(p.inner.Name(), req.Model, status, elapsed, prompt, completion)
	}
	return resp, err
}
