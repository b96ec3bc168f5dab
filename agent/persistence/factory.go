package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/config"
	"github.com/chinmaygupta26/elyx/internal/database"
)

// NewTranscriptStore creates the TranscriptStore named by cfg.Store.
// "none" is not a store; callers skip persistence for it.
func NewTranscriptStore(ctx context.Context, cfg config.TranscriptConfig, logger *zap.Logger) (TranscriptStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch StoreType(cfg.Store) {
	case StoreTypeMemory, "":
		return NewMemoryTranscriptStore(), nil
	case StoreTypeFile:
		return NewFileTranscriptStore(cfg.Dir)
	case StoreTypeRedis:
		return NewRedisTranscriptStore(ctx, cfg.Redis)
	case StoreTypeDatabase:
		db, err := database.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		store, err := NewGormTranscriptStore(db)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported transcript store type: %s", cfg.Store)
	}
}
