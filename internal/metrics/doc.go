// Copyright (c) Elyx Authors.
// Licensed under the MIT License.

/*
Package metrics collects Prometheus metrics for the concierge engine.

Collector registers its vectors through promauto, isolated by namespace,
and covers two areas:

  - Conversation: turns per speaker, router decisions, hand-offs opened
    and closed, phase transitions, finished sessions with turn count and
    wall time.
  - LLM: request count, latency and token usage per provider and model.
*/
package metrics
