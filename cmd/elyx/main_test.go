package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/agent/conversation"
	"github.com/chinmaygupta26/elyx/agent/persistence"
	"github.com/chinmaygupta26/elyx/config"
	"github.com/chinmaygupta26/elyx/llm"
	llmfactory "github.com/chinmaygupta26/elyx/llm/factory"
	"github.com/chinmaygupta26/elyx/testutil"
	"github.com/chinmaygupta26/elyx/testutil/mocks"
)

func useProvider(t *testing.T, p llm.Provider) {
	t.Helper()
	prev := newProvider
	newProvider = func(context.Context, config.LLMConfig, llmfactory.Options, *zap.Logger) (llm.Provider, error) {
		return p, nil
	}
	t.Cleanup(func() { newProvider = prev })
}

// writeConfig writes a config storing transcripts as files under the
// returned directory.
func writeConfig(t *testing.T) (path, dir string) {
	t.Helper()
	base := t.TempDir()
	dir = filepath.Join(base, "transcripts")
	path = filepath.Join(base, "config.yaml")
	body := fmt.Sprintf("log:\n  level: error\ntranscript:\n  store: file\n  dir: %s\n", dir)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path, dir
}

func scriptedTeam() *mocks.MockProvider {
	return mocks.NewMockProvider().
		WithResponse("Sure, happy to help.").
		WithCallerResponses("Router", "Ruby", "Ruby").
		WithCallerResponses("David Lim", "Okay, bye!")
}

func TestChooseMode(t *testing.T) {
	tests := []struct {
		input string
		want  mode
	}{
		{"1\n", modeInteractive},
		{" 1 \n", modeInteractive},
		{"2\n", modeSimulated},
		{"anything\n", modeSimulated},
		{"", modeSimulated},
		{"1", modeInteractive},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := chooseMode(bufio.NewReader(strings.NewReader(tt.input)), &out)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "Enter choice (1 or 2): ")
	}
}

func TestRun_VersionAndHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	ctx := testutil.TestContext(t)

	assert.Equal(t, 0, run(ctx, []string{"version"}, nil, &out, &errOut))
	assert.Contains(t, out.String(), "Elyx dev")

	out.Reset()
	assert.Equal(t, 0, run(ctx, []string{"help"}, nil, &out, &errOut))
	assert.Contains(t, out.String(), "transcript")

	assert.Equal(t, 1, run(ctx, []string{"serve"}, nil, &out, &errOut))
	assert.Contains(t, errOut.String(), "Unknown command: serve")
}

func TestRun_Simulate(t *testing.T) {
	provider := scriptedTeam()
	useProvider(t, provider)
	cfgPath, dir := writeConfig(t)
	ctx := testutil.TestContext(t)

	var out, errOut bytes.Buffer
	code := run(ctx, []string{"simulate", "--config", cfgPath, "--model", "m-test"}, nil, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	text := out.String()
	assert.Contains(t, text, "Starting simulated conversation with David Lim")
	assert.Contains(t, text, "👤 David Lim (Client):\n"+conversation.DefaultOpeningLine)
	assert.Contains(t, text, "🎯 Ruby (Orchestrator & Concierge):\nSure, happy to help.")
	assert.Contains(t, text, "✅ Conversation ended.")

	for _, req := range provider.Calls() {
		assert.Equal(t, "m-test", req.Request.Model)
	}

	store, err := persistence.NewFileTranscriptStore(dir)
	require.NoError(t, err)
	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Positive(t, sessions[0].Entries)
}

func TestRun_Chat(t *testing.T) {
	useProvider(t, scriptedTeam())
	cfgPath, _ := writeConfig(t)
	ctx := testutil.TestContext(t)

	var out, errOut bytes.Buffer
	code := run(ctx, []string{"chat", "--config", cfgPath}, strings.NewReader("hello\nquit\n"), &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	text := out.String()
	assert.Contains(t, text, "Welcome to Elyx")
	assert.Contains(t, text, "You: ")
	assert.Contains(t, text, "Sure, happy to help.")
	assert.Contains(t, text, "Thank you for using Elyx")
	assert.NotContains(t, text, "👤 David Lim (Client):\nhello")
}

func TestRun_MenuChoosesChat(t *testing.T) {
	useProvider(t, scriptedTeam())
	t.Setenv("ELYX_TRANSCRIPT_STORE", "none")

	var out, errOut bytes.Buffer
	code := run(testutil.TestContext(t), nil, strings.NewReader("1\nexit\n"), &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Welcome to Elyx")
	assert.Contains(t, out.String(), "Thank you for using Elyx")
}

func TestRun_MenuEOFSimulates(t *testing.T) {
	useProvider(t, scriptedTeam())
	t.Setenv("ELYX_TRANSCRIPT_STORE", "none")

	var out, errOut bytes.Buffer
	code := run(testutil.TestContext(t), nil, strings.NewReader(""), &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Starting simulated conversation")
}

func TestRun_ProviderFlagIsValidated(t *testing.T) {
	useProvider(t, scriptedTeam())
	cfgPath, _ := writeConfig(t)

	var out, errOut bytes.Buffer
	code := run(testutil.TestContext(t), []string{"simulate", "--config", cfgPath, "--provider", "nope"}, nil, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "unsupported llm.provider")
}

func TestRun_SimulateWithMetrics(t *testing.T) {
	useProvider(t, scriptedTeam())
	cfgPath, _ := writeConfig(t)

	var out, errOut bytes.Buffer
	code := run(testutil.TestContext(t), []string{"simulate", "--config", cfgPath, "--metrics-addr", "127.0.0.1:0"}, nil, &out, &errOut)
	assert.Equal(t, 0, code, errOut.String())
}

func TestRun_Transcript(t *testing.T) {
	useProvider(t, scriptedTeam())
	cfgPath, dir := writeConfig(t)
	ctx := testutil.TestContext(t)

	var out, errOut bytes.Buffer
	require.Equal(t, 0, run(ctx, []string{"simulate", "--config", cfgPath}, nil, &out, &errOut), errOut.String())

	store, err := persistence.NewFileTranscriptStore(dir)
	require.NoError(t, err)
	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	id := sessions[0].SessionID

	out.Reset()
	require.Equal(t, 0, run(ctx, []string{"transcript", "--config", cfgPath, "--list"}, nil, &out, &errOut))
	assert.Contains(t, out.String(), "SESSION")
	assert.Contains(t, out.String(), id)

	out.Reset()
	require.Equal(t, 0, run(ctx, []string{"transcript", "--config", cfgPath, "--session", id, "--format", "json"}, nil, &out, &errOut))
	var events []conversation.Event
	require.NoError(t, json.Unmarshal(out.Bytes(), &events))
	require.NotEmpty(t, events)
	assert.Equal(t, conversation.EventSessionStarted, events[0].Type)
	assert.Equal(t, conversation.EventTerminated, events[len(events)-1].Type)

	out.Reset()
	require.Equal(t, 0, run(ctx, []string{"transcript", "--config", cfgPath, "--session", id}, nil, &out, &errOut))
	assert.Contains(t, out.String(), "📜 Session "+id)
	assert.Contains(t, out.String(), "✅ Conversation ended.")

	errOut.Reset()
	assert.Equal(t, 1, run(ctx, []string{"transcript", "--config", cfgPath, "--session", "missing"}, nil, &out, &errOut))
}

func TestRun_TranscriptWithDefaultConfig(t *testing.T) {
	useProvider(t, scriptedTeam())
	dir := t.TempDir()
	t.Setenv("ELYX_TRANSCRIPT_DIR", dir)
	t.Setenv("ELYX_LOG_LEVEL", "error")
	ctx := testutil.TestContext(t)

	var out, errOut bytes.Buffer
	require.Equal(t, 0, run(ctx, []string{"simulate"}, nil, &out, &errOut), errOut.String())

	// a later process sees the session through the same defaults
	out.Reset()
	require.Equal(t, 0, run(ctx, []string{"transcript", "--list"}, nil, &out, &errOut), errOut.String())
	assert.NotContains(t, out.String(), "No stored sessions.")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	id := strings.Fields(lines[1])[0]

	out.Reset()
	require.Equal(t, 0, run(ctx, []string{"transcript", "--session", id}, nil, &out, &errOut), errOut.String())
	assert.Contains(t, out.String(), "📜 Session "+id)
	assert.Contains(t, out.String(), conversation.DefaultOpeningLine)
	assert.Contains(t, out.String(), "✅ Conversation ended.")
}

func TestRun_TranscriptUsage(t *testing.T) {
	var out, errOut bytes.Buffer
	ctx := testutil.TestContext(t)

	assert.Equal(t, 2, run(ctx, []string{"transcript"}, nil, &out, &errOut))
	assert.Equal(t, 2, run(ctx, []string{"transcript", "--session", "x", "--format", "xml"}, nil, &out, &errOut))

	t.Setenv("ELYX_TRANSCRIPT_STORE", "none")
	assert.Equal(t, 1, run(ctx, []string{"transcript", "--list"}, nil, &out, &errOut))
	assert.Contains(t, errOut.String(), "disabled")

	errOut.Reset()
	t.Setenv("ELYX_TRANSCRIPT_STORE", "memory")
	assert.Equal(t, 1, run(ctx, []string{"transcript", "--list"}, nil, &out, &errOut))
	assert.Contains(t, errOut.String(), "does not outlive a session")
}
