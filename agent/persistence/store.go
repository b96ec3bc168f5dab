package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrStoreClosed  = errors.New("store is closed")
	ErrInvalidInput = errors.New("invalid input")
)

// StoreType represents the type of storage backend
type StoreType string

const (
	StoreTypeNone     StoreType = "none"
	StoreTypeMemory   StoreType = "memory"
	StoreTypeFile     StoreType = "file"
	StoreTypeRedis    StoreType = "redis"
	StoreTypeDatabase StoreType = "database"
)

// Store is the base interface for all persistent stores
type Store interface {
	// Close closes the store and releases resources
	Close() error

	// Ping checks if the store is healthy
	Ping(ctx context.Context) error
}

// Entry is one recorded session event.
type Entry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Type      string    `json:"type"`
	Speaker   string    `json:"speaker,omitempty"`
	Target    string    `json:"target,omitempty"`
	Text      string    `json:"text,omitempty"`
	Phase     string    `json:"phase"`
	Turn      int       `json:"turn"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the fields every backend relies on.
func (e *Entry) Validate() error {
	if e == nil {
		return ErrInvalidInput
	}
	if e.SessionID == "" {
		return fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	if e.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidInput)
	}
	if e.Seq < 0 {
		return fmt.Errorf("%w: seq must not be negative", ErrInvalidInput)
	}
	return nil
}

// SessionSummary describes one stored session.
type SessionSummary struct {
	SessionID string    `json:"session_id"`
	Entries   int       `json:"entries"`
	StartedAt time.Time `json:"started_at"`
}

// TranscriptStore persists session events.
type TranscriptStore interface {
	Store

	// Append stores one entry. ID and CreatedAt are filled in when empty.
	Append(ctx context.Context, entry *Entry) error

	// List returns the entries of a session ordered by Seq.
	// Unknown sessions yield ErrNotFound.
	List(ctx context.Context, sessionID string) ([]*Entry, error)

	// Sessions lists stored sessions, oldest first.
	Sessions(ctx context.Context) ([]SessionSummary, error)
}

func prepare(e *Entry, newID func() string) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return nil
}
