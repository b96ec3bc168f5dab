// Copyright (c) Elyx Authors.
// Licensed under the MIT License.

/*
Package agent binds participant personas to a language model.

An Agent answers as one persona: the system prompt is the persona text,
followed by the recent conversation context when there is one. Each agent
keeps its own exchange history, cleared at the start of every session.

Team holds an agent per roster participant and satisfies the conversation
package's Responder. Classifier wraps the router persona and returns its
raw routing label; handoff.Router decides what the label means.

DefaultRoster is the built-in Elyx team. LoadRoster reads a replacement
from YAML:

	participants:
	  - id: Ruby
	    kind: orchestrator
	    title: Orchestrator & Concierge
	    icon: "🎯"
	    temperature: 0.7
	    persona: |
	      You are Ruby...
*/
package agent
