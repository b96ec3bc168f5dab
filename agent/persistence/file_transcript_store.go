package persistence

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const transcriptExt = ".jsonl"

var safeSessionID = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileTranscriptStore writes one JSON Lines file per session.
// Suitable for single-node deployments.
type FileTranscriptStore struct {
	baseDir string
	mu      sync.RWMutex
	closed  bool
}

// NewFileTranscriptStore creates the directory if needed.
func NewFileTranscriptStore(dir string) (*FileTranscriptStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: transcript directory is required", ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}
	return &FileTranscriptStore{baseDir: dir}, nil
}

// Close closes the store
func (s *FileTranscriptStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ping checks that the directory is still there
func (s *FileTranscriptStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	_, err := os.Stat(s.baseDir)
	return err
}

func (s *FileTranscriptStore) path(sessionID string) (string, error) {
	if !safeSessionID.MatchString(sessionID) {
		return "", fmt.Errorf("%w: session id %q", ErrInvalidInput, sessionID)
	}
	return filepath.Join(s.baseDir, sessionID+transcriptExt), nil
}

// Append adds one line to the session file.
func (s *FileTranscriptStore) Append(ctx context.Context, entry *Entry) error {
	if err := prepare(entry, uuid.NewString); err != nil {
		return err
	}
	path, err := s.path(entry.SessionID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List reads the session file.
func (s *FileTranscriptStore) List(ctx context.Context, sessionID string) ([]*Entry, error) {
	path, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return readEntries(path)
}

func readEntries(path string) ([]*Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []*Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("corrupt transcript %s: %w", filepath.Base(path), err)
		}
		out = append(out, &e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	sortEntries(out)
	return out, nil
}

// Sessions scans the directory.
func (s *FileTranscriptStore) Sessions(ctx context.Context) ([]SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	files, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	var out []SessionSummary
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), transcriptExt) {
			continue
		}
		entries, err := readEntries(filepath.Join(s.baseDir, f.Name()))
		if err != nil || len(entries) == 0 {
			continue
		}
		out = append(out, SessionSummary{
			SessionID: strings.TrimSuffix(f.Name(), transcriptExt),
			Entries:   len(entries),
			StartedAt: entries[0].CreatedAt,
		})
	}
	sortSummaries(out)
	return out, nil
}
