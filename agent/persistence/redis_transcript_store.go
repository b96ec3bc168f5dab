package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/chinmaygupta26/elyx/config"
)

// RedisTranscriptStore keeps each session as a Redis list of JSON entries
// and indexes sessions in a sorted set scored by start time.
// Suitable for distributed deployments.
type RedisTranscriptStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisTranscriptStore connects to Redis and checks the connection.
func NewRedisTranscriptStore(ctx context.Context, cfg config.RedisConfig) (*RedisTranscriptStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "elyx:transcript:"
	}
	return &RedisTranscriptStore{client: client, keyPrefix: keyPrefix, ttl: cfg.TTL}, nil
}

// Close closes the store
func (s *RedisTranscriptStore) Close() error {
	return s.client.Close()
}

// Ping checks if the store is healthy
func (s *RedisTranscriptStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// sessionKey returns the Redis key for a session's entry list
func (s *RedisTranscriptStore) sessionKey(sessionID string) string {
	return s.keyPrefix + "session:" + sessionID
}

// indexKey returns the Redis key of the session index
func (s *RedisTranscriptStore) indexKey() string {
	return s.keyPrefix + "sessions"
}

// Append pushes entry onto the session list and registers the session.
func (s *RedisTranscriptStore) Append(ctx context.Context, entry *Entry) error {
	if err := prepare(entry, uuid.NewString); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	key := s.sessionKey(entry.SessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.ZAddNX(ctx, s.indexKey(), redis.Z{
			Score:  float64(entry.CreatedAt.UnixMilli()),
			Member: entry.SessionID,
		})
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	return err
}

// List returns the session entries ordered by Seq.
func (s *RedisTranscriptStore) List(ctx context.Context, sessionID string) ([]*Entry, error) {
	raw, err := s.client.LRange(ctx, s.sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	out := make([]*Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		out = append(out, &e)
	}
	sortEntries(out)
	return out, nil
}

// Sessions reads the index. Sessions whose list expired are dropped from it.
func (s *RedisTranscriptStore) Sessions(ctx context.Context) ([]SessionSummary, error) {
	members, err := s.client.ZRangeWithScores(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]SessionSummary, 0, len(members))
	for _, m := range members {
		id, ok := m.Member.(string)
		if !ok {
			continue
		}
		n, err := s.client.LLen(ctx, s.sessionKey(id)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		if n == 0 {
			s.client.ZRem(ctx, s.indexKey(), id)
			continue
		}
		out = append(out, SessionSummary{
			SessionID: id,
			Entries:   int(n),
			StartedAt: time.UnixMilli(int64(m.Score)),
		})
	}
	return out, nil
}
