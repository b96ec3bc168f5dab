// =============================================================================
// Elyx entry point
// =============================================================================
// Health-concierge chat: an orchestrator routes the client to specialists.
//
// Usage:
//
//	elyx                              # choose interactive or simulated
//	elyx chat                         # interactive session on stdin
//	elyx simulate                     # generated client session
//	elyx chat --config config.yaml    # explicit config file
//	elyx transcript --list            # stored sessions
//	elyx transcript --session <id>    # replay a stored session
//	elyx version                      # version information
// =============================================================================

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// =============================================================================
// Version information (set at build time)
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// Main
// =============================================================================

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches a command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		in := bufio.NewReader(stdin)
		if chooseMode(in, stdout) == modeInteractive {
			return runChat(ctx, nil, in, stdout, stderr)
		}
		return runSimulate(ctx, nil, stdout, stderr)
	}

	switch args[0] {
	case "chat":
		return runChat(ctx, args[1:], stdin, stdout, stderr)
	case "simulate":
		return runSimulate(ctx, args[1:], stdout, stderr)
	case "transcript":
		return runTranscript(ctx, args[1:], stdout, stderr)
	case "version":
		printVersion(stdout)
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}
}

// =============================================================================
// Mode menu
// =============================================================================

type mode int

const (
	modeInteractive mode = iota + 1
	modeSimulated
)

// chooseMode asks for a mode on in. Anything but "1", including end of
// input, selects the simulated mode.
func chooseMode(in *bufio.Reader, out io.Writer) mode {
	fmt.Fprintln(out, "🚀 Elyx Team Conversation System")
	fmt.Fprintln(out, "\nChoose mode:")
	fmt.Fprintln(out, "1. Interactive (you type messages)")
	fmt.Fprintln(out, "2. Simulated (AI client)")
	fmt.Fprint(out, "\nEnter choice (1 or 2): ")

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return modeSimulated
	}
	if strings.TrimSpace(line) == "1" {
		return modeInteractive
	}
	return modeSimulated
}

// =============================================================================
// Version and help
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Elyx %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Elyx - health concierge team chat

Usage:
  elyx [command] [options]

Commands:
  chat        Interactive session: you are the client
  simulate    Simulated session with a generated client
  transcript  List or replay stored sessions
  version     Show version information
  help        Show this help message

With no command, elyx asks which session mode to run.

Options for 'chat' and 'simulate':
  --config <path>        Path to configuration file (YAML)
  --provider <name>      LLM provider (gemini, anthropic)
  --model <name>         Model name
  --roster <path>        Participant roster (YAML)
  --metrics-addr <addr>  Serve Prometheus metrics on addr

Options for 'transcript':
  --config <path>        Path to configuration file (YAML)
  --list                 List stored sessions
  --session <id>         Session to replay
  --format <text|json>   Replay format (default text)

Examples:
  elyx chat --provider anthropic --model claude-sonnet-4-5
  elyx simulate --metrics-addr :9091
  elyx transcript --session 3f0c... --format json`)
}
