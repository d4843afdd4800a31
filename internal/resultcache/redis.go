package resultcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

const redisKeyPrefix = "solaimg:result:"

// RedisStore holds the same entries as FileStore in redis, for deployments
// where runs happen on ephemeral hosts and a local cache dir would not
// survive between them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore pings the server and returns a store whose keys expire
// after ttl (freshness is still checked per-Get against the caller's
// maxAge, matching FileStore semantics).
func NewRedisStore(ctx context.Context, client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultMaxAge
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Get(ctx context.Context, destinationID string, maxAge time.Duration) (*domain.StrategyResult, bool) {
	data, err := s.client.Get(ctx, redisKeyPrefix+destinationID).Bytes()
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if time.Since(entry.Timestamp) > maxAge {
		return nil, false
	}
	return &entry.Result, true
}

func (s *RedisStore) Set(ctx context.Context, destinationID string, result domain.StrategyResult) error {
	entry := Entry{Timestamp: time.Now().UTC(), Result: result}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+destinationID, data, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
