// Copyright (c) Elyx Authors.
// Licensed under the MIT License.

/*
Command elyx runs Elyx concierge sessions from the terminal.

	elyx chat        you are the client, one message per line
	elyx simulate    a generated client talks to the team
	elyx transcript  list or replay sessions from the transcript store

Configuration is read from --config (YAML) and ELYX_* environment
variables; see package config. Logs go to stderr, the conversation to
stdout.
*/
package main
