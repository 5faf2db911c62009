package configs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis returns nil, nil when REDIS_URL is empty.
func OpenRedis(ctx context.Context, env ENV) (*redis.Client, error) {
	if env.RedisURL == "" {
		log.Println("REDIS_URL not set, refresh tokens are stateless.")
		return nil, nil
	}

	opts, err := redis.ParseURL(env.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Println("✅ Redis connected.")
	return rdb, nil
}
