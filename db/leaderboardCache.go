package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jinbekim/quizquiz/models"

	"github.com/redis/go-redis/v9"
)

const (
	leaderboardKeyPrefix = "leaderboard:top:"
	leaderboardCacheTTL  = 5 * time.Minute
)

type LeaderboardCache interface {
	// Get returns the cached ranking, or (nil, nil) on a miss.
	Get(ctx context.Context, limit int) ([]*models.User, error)
	Set(ctx context.Context, limit int, users []*models.User) error
	Invalidate(ctx context.Context) error
}

func NewRedisClient(ctx context.Context, addr, password string, database int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

type RedisLeaderboardCache struct {
	client *redis.Client
}

func NewRedisLeaderboardCache(client *redis.Client) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{client: client}
}

func (c *RedisLeaderboardCache) Get(ctx context.Context, limit int) ([]*models.User, error) {
	data, err := c.client.Get(ctx, leaderboardKeyPrefix+strconv.Itoa(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}

	var users []*models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal leaderboard cache: %w", err)
	}
	return users, nil
}

func (c *RedisLeaderboardCache) Set(ctx context.Context, limit int, users []*models.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}
	if err := c.client.Set(ctx, leaderboardKeyPrefix+strconv.Itoa(limit), data, leaderboardCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to write leaderboard cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached ranking size.
func (c *RedisLeaderboardCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, leaderboardKeyPrefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan leaderboard keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
	}
	return nil
}
