package conversation

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/agent/handoff"
	"github.com/chinmaygupta26/elyx/types"
)

// InteractiveDriver reads counterpart messages line by line from an input
// stream. Exit commands end the session at once; end of input closes it.
// Specialist sub-conversations run until the counterpart is satisfied,
// unless the config sets an exchange budget.
type InteractiveDriver struct {
	driver
	input io.Reader
}

// NewInteractiveDriver creates an interactive driver over input.
func NewInteractiveDriver(roster *types.Roster, responder Responder, router *handoff.Router, input io.Reader, cfg DriverConfig) *InteractiveDriver {
	return &InteractiveDriver{
		driver: newDriver(roster, responder, router, cfg, "interactive_driver"),
		input:  input,
	}
}

// Run drives one session until it terminates, input ends or ctx is done.
func (d *InteractiveDriver) Run(ctx context.Context) (*Result, error) {
	c, err := d.newSession(ctx)
	if err != nil {
		return nil, err
	}

	readCtx, stop := context.WithCancel(ctx)
	defer stop()
	lines := readLines(readCtx, d.input, d.logger)
	for !c.Terminated() {
		d.prompt()

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			c.Close(ctx, ReasonCancelled)
			continue
		case line, ok = <-lines:
		}
		if !ok {
			c.Close(ctx, ReasonInputClosed)
			continue
		}

		out, err := c.Receive(ctx, line)
		if err != nil {
			d.logger.Warn("message rejected", zap.Error(err))
			continue
		}
		d.handBack(ctx, c, out)
	}
	return d.result(c), nil
}

func (d *InteractiveDriver) prompt() {
	if d.cfg.Prompt != nil {
		fmt.Fprint(d.cfg.Prompt, "You: ")
	}
}

// readLines scans r on its own goroutine so the driver can observe ctx
// while waiting for input. The channel is closed at end of input.
func readLines(ctx context.Context, r io.Reader, logger *zap.Logger) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Warn("input read failed", zap.Error(err))
		}
	}()
	return lines
}
