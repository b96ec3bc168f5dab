// Copyright (c) Elyx Authors.
// Licensed under the MIT License.

/*
Package conversation runs concierge sessions: a Turn Controller that owns
the session state machine and two drivers that feed it counterpart
messages.

# Phases

	AWAITING_COUNTERPART --msg--> ORCHESTRATING --specialist--> SPECIALIST_ENGAGED
	        ^                           |                              |
	        +------- no hand-off -------+<---- satisfied / budget -----+

Any phase moves to TERMINATED on an exit command, an end-of-conversation
keyword or the turn ceiling. Exit beats end, and end beats satisfaction.

# Core types

  - Controller: consumes one message per Receive call and returns an Outcome
  - Session: the typed state record; the engaged specialist is a
    handoff.Target, so "routed" cannot disagree with it
  - BoundedContext: running context trimmed to its budget after every write
  - Lexicon: satisfaction, end and exit keyword matching
  - InteractiveDriver / SimulatedDriver: line input or generated
    counterpart, both issuing the fixed follow-up after a sub-conversation

# Collaborators

The controller talks to participants through Responder and to the routing
model through handoff.Router. Responder failures become inline
"(Error from X: ...)" replies; the controller never retries.

Events go to an EventSink: ConsoleRenderer prints them, TranscriptSink
stores them through agent/persistence.
*/
package conversation
