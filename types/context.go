package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keySessionID contextKey = "session_id"
	keySpeaker   contextKey = "speaker"
)

// WithSessionID adds the conversation session ID to ctx.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, keySessionID, sessionID)
}

// SessionID extracts the session ID from ctx.
func SessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keySessionID).(string)
	return v, ok && v != ""
}

// WithSpeaker adds the participant taking the current turn to ctx.
func WithSpeaker(ctx context.Context, speaker Identity) context.Context {
	return context.WithValue(ctx, keySpeaker, speaker)
}

// Speaker extracts the current speaker from ctx.
func Speaker(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(keySpeaker).(Identity)
	return v, ok && v != ""
}
