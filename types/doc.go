// Copyright (c) Elyx Authors.
// Licensed under the MIT License.

/*
Package types holds the shared types of the Elyx concierge engine.

It sits at the bottom of the import graph and depends on no other package
in the module.

# Participants

  - Identity: participant display name, used as the routing key
  - Kind: orchestrator / specialist / counterpart / router
  - Descriptor: static title, icon, persona and sampling temperature
  - Roster: the closed, validated participant set of a deployment

# Errors

Error / ErrorCode carry a stable code plus Retryable and Provider markers.
IsRetryable, GetErrorCode and IsErrorCode walk the wrap chain, so callers
may freely wrap with fmt.Errorf("...: %w", err).
*/
package types
