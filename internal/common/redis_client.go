package common

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"portal-united/directory/internal/logging"
)

// RedisOptions addresses the Redis instance holding sessions and used invitations.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings. Unlike a cache, sessions are useless without
// Redis, so a failed ping is returned rather than logged.
func NewRedisClient(opts RedisOptions) (*redis.Client, error) {
	logging.Info("Initializing Redis client", "addr", opts.Addr, "db", opts.DB)

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	logging.Info("Connected to Redis", "addr", opts.Addr)
	return client, nil
}
