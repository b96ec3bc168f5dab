// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 Collector
// =============================================================================

// Collector records conversation and model metrics.
type Collector struct {
	// conversation
	turnsTotal         *prometheus.CounterVec
	handoffsTotal      *prometheus.CounterVec
	routeDecisions     *prometheus.CounterVec
	phaseTransitions   *prometheus.CounterVec
	sessionsTotal      *prometheus.CounterVec
	sessionTurns       prometheus.Histogram
	sessionDuration    prometheus.Histogram
	specialistExchange *prometheus.HistogramVec

	// LLM
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector registers every metric under namespace with the default registerer.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Participant turns, by speaker and outcome",
		},
		[]string{"speaker", "status"}, // status: ok, error
	)

	c.handoffsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoffs_total",
			Help:      "Specialist hand-offs, by specialist and how they closed",
		},
		[]string{"specialist", "outcome"}, // outcome: engaged, explicit, implicit, aborted
	)

	c.routeDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_decisions_total",
			Help:      "Router decisions, by reason",
		},
		[]string{"reason"},
	)

	c.phaseTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_transitions_total",
			Help:      "Turn controller phase transitions",
		},
		[]string{"from", "to"},
	)

	c.sessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Finished sessions, by termination reason",
		},
		[]string{"reason"},
	)

	c.sessionTurns = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_turns",
			Help:      "Turn count at session end",
			Buckets:   prometheus.LinearBuckets(0, 3, 8),
		},
	)

	c.sessionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Session wall time in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	c.specialistExchange = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "specialist_exchanges",
			Help:      "Exchanges per hand-off before it closed",
			Buckets:   []float64{1, 2, 3, 5, 8, 13},
		},
		[]string{"specialist"},
	)

	c.llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"provider", "model", "status"},
	)

	c.llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	c.llmTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens used",
		},
		[]string{"provider", "model", "type"}, // type: prompt, completion
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// =============================================================================
// 💬 Conversation
// =============================================================================

// RecordTurn counts one participant turn.
func (c *Collector) RecordTurn(speaker string, failed bool) {
	status := "ok"
	if failed {
		status = "error"
	}
	c.turnsTotal.WithLabelValues(speaker, status).Inc()
}

// RecordRoute counts one router decision.
func (c *Collector) RecordRoute(reason string) {
	c.routeDecisions.WithLabelValues(reason).Inc()
}

// RecordHandoffStarted counts a specialist engagement.
func (c *Collector) RecordHandoffStarted(specialist string) {
	c.handoffsTotal.WithLabelValues(specialist, "engaged").Inc()
}

// RecordHandoffClosed counts how a specialist sub-conversation ended.
func (c *Collector) RecordHandoffClosed(specialist, outcome string, exchanges int) {
	c.handoffsTotal.WithLabelValues(specialist, outcome).Inc()
	c.specialistExchange.WithLabelValues(specialist).Observe(float64(exchanges))
}

// RecordTransition counts a phase change.
func (c *Collector) RecordTransition(from, to string) {
	c.phaseTransitions.WithLabelValues(from, to).Inc()
}

// RecordSession records a finished session.
func (c *Collector) RecordSession(reason string, turns int, duration time.Duration) {
	c.sessionsTotal.WithLabelValues(reason).Inc()
	c.sessionTurns.Observe(float64(turns))
	c.sessionDuration.Observe(duration.Seconds())
}

// =============================================================================
// 🤖 LLM
// =============================================================================

// RecordLLMRequest records one model call.
func (c *Collector) RecordLLMRequest(provider, model, status string, duration time.Duration, promptTokens, completionTokens int) {
	c.llmRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())

	if promptTokens > 0 {
		c.llmTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		c.llmTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	}
}
