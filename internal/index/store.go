// Package index keeps the compact per-day index in a Redis hash, one field
// per date.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/smukkama/weather-summary/internal/aggregation"
)

// DefaultKey is the hash holding the index.
const DefaultKey = "weather:daily_index"

// ErrNotFound is returned for a date that has no index entry.
var ErrNotFound = errors.New("index entry not found")

// hashClient is the subset of *redis.Client the store uses.
type hashClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Rename(ctx context.Context, key, newkey string) *redis.StatusCmd
}

// Store manages the daily index in Redis
type Store struct {
	redis hashClient
	key   string
}

// NewStore creates a new index store. An empty key means DefaultKey.
func NewStore(redisClient *redis.Client, key string) *Store {
	return newStore(redisClient, key)
}

func newStore(c hashClient, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{redis: c, key: key}
}

func (s *Store) Name() string { return "index" }

// Write replaces the whole index with the run's entries.
func (s *Store) Write(ctx context.Context, runID string, res *aggregation.Result) error {
	return s.Replace(ctx, res.Index)
}

// Replace swaps the stored index for idx. Readers never see a partial index.
func (s *Store) Replace(ctx context.Context, idx aggregation.DailyIndex) error {
	if len(idx) == 0 {
		if err := s.redis.Del(ctx, s.key).Err(); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
		return nil
	}

	dates := make([]string, 0, len(idx))
	for date := range idx {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	values := make([]interface{}, 0, 2*len(dates))
	for _, date := range dates {
		data, err := json.Marshal(idx[date])
		if err != nil {
			return fmt.Errorf("failed to marshal index entry %s: %w", date, err)
		}
		values = append(values, date, string(data))
	}

	staging := s.key + ":staging"
	if err := s.redis.Del(ctx, staging).Err(); err != nil {
		return fmt.Errorf("failed to reset staging index: %w", err)
	}
	if err := s.redis.HSet(ctx, staging, values...).Err(); err != nil {
		return fmt.Errorf("failed to write index to Redis: %w", err)
	}
	if err := s.redis.Rename(ctx, staging, s.key).Err(); err != nil {
		return fmt.Errorf("failed to publish index: %w", err)
	}

	return nil
}

// Get retrieves the index entry for one date
func (s *Store) Get(ctx context.Context, date string) (*aggregation.IndexEntry, error) {
	data, err := s.redis.HGet(ctx, s.key, date).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%s: %w", date, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get index entry from Redis: %w", err)
	}

	var entry aggregation.IndexEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index entry %s: %w", date, err)
	}

	return &entry, nil
}

// All returns the whole index
func (s *Store) All(ctx context.Context) (aggregation.DailyIndex, error) {
	fields, err := s.redis.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read index from Redis: %w", err)
	}

	idx := make(aggregation.DailyIndex, len(fields))
	for date, data := range fields {
		var entry aggregation.IndexEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal index entry %s: %w", date, err)
		}
		idx[date] = entry
	}

	return idx, nil
}
