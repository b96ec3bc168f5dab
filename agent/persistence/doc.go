// Copyright (c) Elyx Authors.
// Licensed under the MIT License.

/*
Package persistence stores conversation transcripts.

A transcript is the ordered list of events of one session (messages,
hand-offs, returns, termination). Backends:

  - memory: process-local, for tests and single runs
  - file: one JSON Lines file per session
  - redis: a JSON list per session plus a sorted session index
  - database: GORM over postgres, mysql or pure-Go sqlite

Use NewTranscriptStore to build the backend named in the config.
*/
package persistence
