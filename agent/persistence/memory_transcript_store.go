package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryTranscriptStore keeps transcripts in memory.
// Suitable for development and testing. Data is lost on restart.
type MemoryTranscriptStore struct {
	sessions map[string][]*Entry
	mu       sync.RWMutex
	closed   bool
}

// NewMemoryTranscriptStore creates an empty in-memory store
func NewMemoryTranscriptStore() *MemoryTranscriptStore {
	return &MemoryTranscriptStore{sessions: make(map[string][]*Entry)}
}

// Close closes the store
func (s *MemoryTranscriptStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ping checks if the store is healthy
func (s *MemoryTranscriptStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Append stores a copy of entry.
func (s *MemoryTranscriptStore) Append(ctx context.Context, entry *Entry) error {
	if err := prepare(entry, uuid.NewString); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	cp := *entry
	list := append(s.sessions[entry.SessionID], &cp)
	sortEntries(list)
	s.sessions[entry.SessionID] = list
	return nil
}

// List returns copies of the session's entries.
func (s *MemoryTranscriptStore) List(ctx context.Context, sessionID string) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	list, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]*Entry, len(list))
	for i, e := range list {
		cp := *e
		out[i] = &cp
	}
	return out, nil
}

// Sessions lists sessions by the time of their first entry.
func (s *MemoryTranscriptStore) Sessions(ctx context.Context) ([]SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	out := make([]SessionSummary, 0, len(s.sessions))
	for id, list := range s.sessions {
		out = append(out, SessionSummary{SessionID: id, Entries: len(list), StartedAt: list[0].CreatedAt})
	}
	sortSummaries(out)
	return out, nil
}

func sortEntries(list []*Entry) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
}

func sortSummaries(out []SessionSummary) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].SessionID < out[j].SessionID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
}
