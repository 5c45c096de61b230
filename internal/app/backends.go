// Package app builds the cache and queue backends selected by configuration
// and owns the clients behind them.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"buildingclash/internal/config"
	"buildingclash/internal/minio"
	"buildingclash/internal/postgres"
	"buildingclash/internal/redis"
	"buildingclash/internal/service/task"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	memoryQueueSize = 1024
	setupTimeout    = 10 * time.Second
)

// Backends holds the configured cache and queue and the clients they share
type Backends struct {
	Cache task.Cache
	Queue task.Queue

	redisClient *goredis.Client
	db          *gorm.DB
}

// OpenBackends connects every client the configuration needs, once
func OpenBackends(cfg config.Config) (*Backends, error) {
	b := &Backends{}

	if cfg.CacheDriver == config.DriverRedis || cfg.QueueDriver == config.DriverRedis {
		client, err := redis.Init(cfg.RedisUrl)
		if err != nil {
			return nil, err
		}
		b.redisClient = client
	}

	if cfg.CacheDriver == config.DriverPostgres {
		db, err := postgres.Init(cfg.DBUrl)
		if err != nil {
			return nil, multierr.Append(err, b.Close())
		}
		b.db = db
	}

	var minioCache *task.MinioCache
	if cfg.CacheDriver == config.DriverMinio {
		client, err := minio.Init(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
		if err != nil {
			return nil, multierr.Append(err, b.Close())
		}
		ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
		defer cancel()
		if minioCache, err = task.NewMinioCache(ctx, client, cfg.MinioBucket); err != nil {
			return nil, multierr.Append(err, b.Close())
		}
	}

	switch cfg.CacheDriver {
	case config.DriverMinio:
		b.Cache = minioCache
	case config.DriverRedis:
		b.Cache = task.NewRedisCache(b.redisClient, cfg.CacheTTL)
	case config.DriverPostgres:
		b.Cache = task.NewPostgresCache(b.db)
	case config.DriverMemory:
		b.Cache = task.NewMemoryCache(cfg.CacheTTL)
	default:
		return nil, multierr.Append(fmt.Errorf("unknown cache driver %q", cfg.CacheDriver), b.Close())
	}

	switch cfg.QueueDriver {
	case config.DriverRedis:
		b.Queue = task.NewRedisQueue(b.redisClient, cfg.RedisQueueKey)
	case config.DriverKafka:
		b.Queue = task.NewKafkaQueue(cfg.Brokers(), cfg.KafkaTopic, cfg.KafkaGroupID)
	case config.DriverMemory:
		b.Queue = task.NewMemoryQueue(memoryQueueSize)
	default:
		return nil, multierr.Append(fmt.Errorf("unknown queue driver %q", cfg.QueueDriver), b.Close())
	}

	log.Printf("Backends ready: cache=%s queue=%s", cfg.CacheDriver, cfg.QueueDriver)
	return b, nil
}

// Close shuts the queue and every client, reporting all failures
func (b *Backends) Close() error {
	var err error
	if b.Queue != nil {
		err = multierr.Append(err, b.Queue.Close())
	}
	err = multierr.Append(err, redis.Close(b.redisClient))
	err = multierr.Append(err, postgres.Close(b.db))
	return err
}
