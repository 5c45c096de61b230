package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buildingclash/internal/model"

	"github.com/redis/go-redis/v9"
)

// TaskResultRedisKey prefixes every cached result key
const TaskResultRedisKey = "clash:task"

// RedisCache stores encoded records as plain string values
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache on client. A zero ttl stores keys without expiry.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, taskID string) (model.FeatureCollection, bool, error) {
	data, err := c.client.Get(ctx, resultKey(taskID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.FeatureCollection{}, false, nil
	}
	if err != nil {
		return model.FeatureCollection{}, false, fmt.Errorf("redis get task %s: %w", taskID, err)
	}

	_, fc, err := DecodeRecord(data)
	if err != nil {
		return model.FeatureCollection{}, false, err
	}
	return fc, true, nil
}

func (c *RedisCache) Put(ctx context.Context, taskID string, result model.FeatureCollection) error {
	data, err := EncodeRecord(taskID, result)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, resultKey(taskID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set task %s: %w", taskID, err)
	}
	return nil
}

func resultKey(taskID string) string {
	return fmt.Sprintf("%s:%s", TaskResultRedisKey, taskID)
}
