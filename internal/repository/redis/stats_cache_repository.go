package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whichGLP/business/statscache"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const defaultStatsKey = "stats:drugs:all"

// StatsCacheRepository is the shared tier of the stats cache. It keeps one
// JSON envelope under a single key.
type StatsCacheRepository struct {
	client *redis.Client
	key    string
}

func NewStatsCacheRepository(client *redis.Client, prefix string) *StatsCacheRepository {
	key := defaultStatsKey
	if prefix != "" {
		key = fmt.Sprintf("%s:%s", prefix, defaultStatsKey)
	}

	return &StatsCacheRepository{
		client: client,
		key:    key,
	}
}

// Get returns nil without error when nothing is cached.
func (r *StatsCacheRepository) Get(ctx context.Context) (*statscache.Entry, error) {
	val, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stats from Redis: %w", err)
	}

	var entry statscache.Entry
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats entry: %w", err)
	}

	return &entry, nil
}

func (r *StatsCacheRepository) Set(ctx context.Context, entry statscache.Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal stats entry: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store stats in Redis: %w", err)
	}

	return nil
}

func (r *StatsCacheRepository) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to delete stats from Redis: %w", err)
	}

	return nil
}

// Ping reports whether Redis is reachable.
func (r *StatsCacheRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
