package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/study-service/internal/models"
)

var ErrCacheMiss = errors.New("cache miss")

// ResultsStore holds submitted attempt results until the results view has read them.
type ResultsStore interface {
	Save(ctx context.Context, results *models.AttemptResults) error
	Get(ctx context.Context, attemptID string) (*models.AttemptResults, error)
	Delete(ctx context.Context, attemptID string) error
}

const resultsKeyPrefix = "study:results:"

func resultsKey(attemptID string) string {
	return resultsKeyPrefix + attemptID
}

type redisResultsStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisResultsStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) ResultsStore {
	return &redisResultsStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *redisResultsStore) Save(ctx context.Context, results *models.AttemptResults) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := r.client.Set(ctx, resultsKey(results.AttemptID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to cache results", "attempt_id", results.AttemptID, "error", err)
		return fmt.Errorf("failed to cache results: %w", err)
	}
	return nil
}

func (r *redisResultsStore) Get(ctx context.Context, attemptID string) (*models.AttemptResults, error) {
	data, err := r.client.Get(ctx, resultsKey(attemptID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cached results: %w", err)
	}

	var results models.AttemptResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}
	return &results, nil
}

func (r *redisResultsStore) Delete(ctx context.Context, attemptID string) error {
	return r.client.Del(ctx, resultsKey(attemptID)).Err()
}

type memoryEntry struct {
	results   *models.AttemptResults
	expiresAt time.Time
}

type memoryResultsStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryResultsStore keeps results in process. A zero ttl never expires.
func NewMemoryResultsStore(ttl time.Duration) ResultsStore {
	return &memoryResultsStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *memoryResultsStore) Save(ctx context.Context, results *models.AttemptResults) error {
	entry := memoryEntry{results: results}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[results.AttemptID] = entry
	m.mu.Unlock()
	return nil
}

func (m *memoryResultsStore) Get(ctx context.Context, attemptID string) (*models.AttemptResults, error) {
	m.mu.RLock()
	entry, ok := m.entries[attemptID]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		_ = m.Delete(ctx, attemptID)
		return nil, ErrCacheMiss
	}
	return entry.results, nil
}

func (m *memoryResultsStore) Delete(ctx context.Context, attemptID string) error {
	m.mu.Lock()
	delete(m.entries, attemptID)
	m.mu.Unlock()
	return nil
}
