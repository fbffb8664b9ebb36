package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizdesk/quiz-service/internal/utils"
)

// StatsFreshness is the fixed freshness window for cached dashboard
// statistics. Entries older than this are recomputed from the store.
const StatsFreshness = 5 * time.Minute

// Store is a generic JSON cache over redis.
type Store interface {
	// Get unmarshals the cached value into dest; the bool reports a hit.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type redisStore struct {
	client *redis.Client
	logger utils.Logger
}

func NewRedisStore(client *redis.Client, logger utils.Logger) Store {
	return &redisStore{client: client, logger: logger}
}

func (r *redisStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// Treat a corrupt entry as a miss; the caller recomputes and
		// overwrites it.
		r.logger.Warn("Dropping unparsable cache entry", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// QuizStatsKey builds the cache key for one quiz's dashboard statistics.
func QuizStatsKey(quizID string) string {
	return "quiz:stats:" + quizID
}
