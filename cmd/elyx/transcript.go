package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/agent"
	"github.com/chinmaygupta26/elyx/agent/conversation"
	"github.com/chinmaygupta26/elyx/agent/persistence"
)

// runTranscript lists stored sessions or replays one of them.
func runTranscript(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("transcript", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	rosterPath := fs.String("roster", "", "Participant roster file")
	list := fs.Bool("list", false, "List stored sessions")
	sessionID := fs.String("session", "", "Session to replay")
	format := fs.String("format", "text", "Replay format: text or json")
	if err := fs.Parse(args); err != nil {
		return exitCode(err)
	}

	if !*list && *sessionID == "" {
		fmt.Fprintln(stderr, "Error: one of --list or --session is required")
		return 2
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "Error: unknown format %q\n", *format)
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	switch persistence.StoreType(cfg.Transcript.Store) {
	case persistence.StoreTypeNone:
		fmt.Fprintln(stderr, "Error: transcript store is disabled (transcript.store: none)")
		return 1
	case persistence.StoreTypeMemory, "":
		fmt.Fprintln(stderr, "Error: transcript store \"memory\" does not outlive a session; use file, redis or database")
		return 1
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	store, err := persistence.NewTranscriptStore(ctx, cfg.Transcript, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close transcript store", zap.Error(err))
		}
	}()

	if *list {
		err = listSessions(ctx, store, stdout)
	} else {
		err = replaySession(ctx, store, *sessionID, *format, *rosterPath, stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func listSessions(ctx context.Context, store persistence.TranscriptStore, w io.Writer) error {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No stored sessions.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tENTRIES\tSTARTED")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.SessionID, s.Entries, s.StartedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func replaySession(ctx context.Context, store persistence.TranscriptStore, id, format, rosterPath string, w io.Writer) error {
	if format == "json" {
		events, err := conversation.Replay(ctx, store, id, nil)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	roster, err := agent.LoadRoster(rosterPath)
	if err != nil {
		return err
	}
	renderer := conversation.NewConsoleRenderer(w, roster,
		conversation.WithCounterpartEcho(true),
		conversation.WithBanner(fmt.Sprintf("📜 Session %s", id)),
	)
	_, err = conversation.Replay(ctx, store, id, renderer)
	return err
}
