// Package telemetry initialises OpenTelemetry tracing and metrics export
// for the concierge engine. Disabled config leaves the global noop
// providers in place.
package telemetry
