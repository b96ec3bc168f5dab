// Copyright (c) Elyx Authors.
// Licensed under the MIT License.

/*
Package llm is the boundary between the concierge engine and text
generation backends.

Provider is the single-call contract (Completion plus Name). Concrete
backends live under providers/ (gemini, anthropic); factory.NewProvider
selects one from configuration. ResilientProvider wraps any Provider with
bounded exponential back-off (package retry), a client-side rate limiter,
per-attempt deadlines, Prometheus-style request records and an OTel span
per call. Nothing above this package retries.
*/
package llm
