package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"buildingclash/internal/model"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisQueueKey is the list used when no key is configured
const DefaultRedisQueueKey = "clash:queue"

const redisBlockTimeout = 5 * time.Second

// RedisQueue is a list based queue: LPUSH to publish, BRPOP to receive.
// A popped message is gone, so Ack is a no-op.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue creates a queue on the list named key
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultRedisQueueKey
	}
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Publish(ctx context.Context, msg model.TaskMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode task message %s: %w", msg.TaskID, err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("redis lpush %s: %w", q.key, err)
	}
	return nil
}

func (q *RedisQueue) Receive(ctx context.Context) (*Delivery, error) {
	for {
		res, err := q.client.BRPop(ctx, redisBlockTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, redis.ErrClosed) {
				return nil, ErrQueueClosed
			}
			return nil, fmt.Errorf("redis brpop %s: %w", q.key, err)
		}

		// res is [key, value]
		var msg model.TaskMessage
		if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
			log.Printf("Dropping malformed task message from %s: %v", q.key, err)
			continue
		}
		return NewDelivery(msg, nil), nil
	}
}

// Close leaves the shared client open; it is owned by the caller
func (q *RedisQueue) Close() error {
	return nil
}
