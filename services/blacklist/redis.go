package blacklist

import (
	"context"
	"fmt"
	"time"

	"devlaunch/logger"

	goredis "github.com/redis/go-redis/v9"
)

const redisPrefix = "devlaunch:blacklist:"

type redisStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewRedisStore keys each revoked token with a TTL matching its remaining
// lifetime, so redis expires entries on its own.
func NewRedisStore(addr string, log *logger.Logger) (Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisStore{log: log.With("service", "RedisBlacklist"), rdb: rdb}, nil
}

func (s *redisStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, redisPrefix+hashToken(token), 1, ttl).Err()
}

func (s *redisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, redisPrefix+hashToken(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
