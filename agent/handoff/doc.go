// Copyright (c) Elyx Authors.
// Licensed under the MIT License.

/*
Package handoff decides and records transfers of a conversation from the
orchestrator to a specialist and back.

# Model

  - Target: "no specialist" or exactly one specialist identity; the
    engaged specialist of a session is stored only as a Target, so "routed"
    is always derived from it
  - Router: turns a free-form Classifier label into a Decision; only an
    exact specialist identity hands off, everything else stays with the
    orchestrator
  - Handoff: one specialist sub-conversation: question, exchange count,
    status (accepted -> completed | aborted) and how it was satisfied
  - Manager: opens and closes hand-offs for one session, one at a time

Satisfaction is explicit when the counterpart signals it and implicit when
an exchange budget runs out.
*/
package handoff
