package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chinmaygupta26/elyx/internal/database"
)

// transcriptRow is the table layout of a transcript entry.
type transcriptRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	SessionID string    `gorm:"size:64;not null;index:idx_transcript_session_seq,priority:1"`
	Seq       int       `gorm:"not null;index:idx_transcript_session_seq,priority:2"`
	Type      string    `gorm:"size:32;not null"`
	Speaker   string    `gorm:"size:64"`
	Target    string    `gorm:"size:64"`
	Text      string    `gorm:"type:text"`
	Phase     string    `gorm:"size:32"`
	Turn      int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name
func (transcriptRow) TableName() string { return "transcript_entries" }

func rowFromEntry(e *Entry) transcriptRow {
	return transcriptRow{
		ID: e.ID, SessionID: e.SessionID, Seq: e.Seq, Type: e.Type,
		Speaker: e.Speaker, Target: e.Target, Text: e.Text,
		Phase: e.Phase, Turn: e.Turn, CreatedAt: e.CreatedAt,
	}
}

func (r *transcriptRow) entry() *Entry {
	return &Entry{
		ID: r.ID, SessionID: r.SessionID, Seq: r.Seq, Type: r.Type,
		Speaker: r.Speaker, Target: r.Target, Text: r.Text,
		Phase: r.Phase, Turn: r.Turn, CreatedAt: r.CreatedAt,
	}
}

// GormTranscriptStore stores entries in a SQL table through GORM.
type GormTranscriptStore struct {
	db *gorm.DB
}

// NewGormTranscriptStore migrates the schema and takes ownership of db.
func NewGormTranscriptStore(db *gorm.DB) (*GormTranscriptStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: database handle is required", ErrInvalidInput)
	}
	if err := db.AutoMigrate(&transcriptRow{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return &GormTranscriptStore{db: db}, nil
}

// Close closes the underlying connection pool
func (s *GormTranscriptStore) Close() error {
	return database.Close(s.db)
}

// Ping checks if the database is reachable
func (s *GormTranscriptStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Append inserts one row.
func (s *GormTranscriptStore) Append(ctx context.Context, entry *Entry) error {
	if err := prepare(entry, uuid.NewString); err != nil {
		return err
	}
	row := rowFromEntry(entry)
	return s.db.WithContext(ctx).Create(&row).Error
}

// List returns the session rows ordered by seq.
func (s *GormTranscriptStore) List(ctx context.Context, sessionID string) ([]*Entry, error) {
	var rows []transcriptRow
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	out := make([]*Entry, len(rows))
	for i := range rows {
		out[i] = rows[i].entry()
	}
	return out, nil
}

// Sessions groups rows by session.
func (s *GormTranscriptStore) Sessions(ctx context.Context) ([]SessionSummary, error) {
	var counts []struct {
		SessionID string
		Entries   int64
	}
	err := s.db.WithContext(ctx).
		Model(&transcriptRow{}).
		Select("session_id, count(*) as entries").
		Group("session_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	out := make([]SessionSummary, 0, len(counts))
	for _, c := range counts {
		var first transcriptRow
		err := s.db.WithContext(ctx).
			Where("session_id = ?", c.SessionID).
			Order("seq ASC").
			First(&first).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, SessionSummary{
			SessionID: c.SessionID,
			Entries:   int(c.Entries),
			StartedAt: first.CreatedAt,
		})
	}
	sortSummaries(out)
	return out, nil
}
