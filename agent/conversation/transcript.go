package conversation

import (
	"context"

	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/agent/persistence"
	"github.com/chinmaygupta26/elyx/types"
)

// TranscriptSink records every event in a TranscriptStore. Store errors are
// logged and never interrupt the session.
type TranscriptSink struct {
	store  persistence.TranscriptStore
	logger *zap.Logger
}

// NewTranscriptSink creates a sink writing to store.
func NewTranscriptSink(store persistence.TranscriptStore, logger *zap.Logger) *TranscriptSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptSink{store: store, logger: logger.With(zap.String("component", "transcript_sink"))}
}

// Emit appends ev to the store.
func (s *TranscriptSink) Emit(ctx context.Context, ev Event) {
	// a cancelled session still records its termination
	ctx = context.WithoutCancel(ctx)
	if err := s.store.Append(ctx, EntryFromEvent(ev)); err != nil {
		s.logger.Warn("transcript append failed",
			zap.String("session_id", ev.SessionID),
			zap.Int("seq", ev.Seq),
			zap.Error(err),
		)
	}
}

// EntryFromEvent converts an event to its stored form.
func EntryFromEvent(ev Event) *persistence.Entry {
	return &persistence.Entry{
		SessionID: ev.SessionID,
		Seq:       ev.Seq,
		Type:      string(ev.Type),
		Speaker:   string(ev.Speaker),
		Target:    string(ev.Target),
		Text:      ev.Text,
		Phase:     string(ev.Phase),
		Turn:      ev.Turn,
		CreatedAt: ev.Time,
	}
}

// EventFromEntry converts a stored entry back to an event.
func EventFromEntry(e *persistence.Entry) Event {
	return Event{
		SessionID: e.SessionID,
		Seq:       e.Seq,
		Type:      EventType(e.Type),
		Speaker:   types.Identity(e.Speaker),
		Target:    types.Identity(e.Target),
		Text:      e.Text,
		Phase:     Phase(e.Phase),
		Turn:      e.Turn,
		Time:      e.CreatedAt,
	}
}

// Replay loads a stored session and emits its events to sink in order.
func Replay(ctx context.Context, store persistence.TranscriptStore, sessionID string, sink EventSink) ([]Event, error) {
	entries, err := store.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	events := make([]Event, len(entries))
	for i, e := range entries {
		events[i] = EventFromEntry(e)
		if sink != nil {
			sink.Emit(ctx, events[i])
		}
	}
	return events, nil
}
