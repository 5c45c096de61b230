package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Cache and queue backend names
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverKafka    = "kafka"
	DriverMinio    = "minio"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	DBUrl    string `mapstructure:"DB_URL"`
	RedisUrl string `mapstructure:"REDIS_URL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	CacheDriver string        `mapstructure:"CACHE_DRIVER"`
	CacheTTL    time.Duration `mapstructure:"CACHE_TTL"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	QueueDriver   string `mapstructure:"QUEUE_DRIVER"`
	RedisQueueKey string `mapstructure:"REDIS_QUEUE_KEY"`
	KafkaBrokers  string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic    string `mapstructure:"KAFKA_TOPIC"`
	KafkaGroupID  string `mapstructure:"KAFKA_GROUP_ID"`

	PollInterval time.Duration `mapstructure:"POLL_INTERVAL"`
	PollTimeout  time.Duration `mapstructure:"POLL_TIMEOUT"`

	WorkerConcurrency   int `mapstructure:"WORKER_CONCURRENCY"`
	EmbeddedWorkers     int `mapstructure:"EMBEDDED_WORKERS"`
	DetectorConcurrency int `mapstructure:"DETECTOR_CONCURRENCY"`
}

func LoadConfig() (c Config, err error) {
	v := viper.New()

	// Get environment type from ENV variable or use development as default
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	setDefaults(v)

	// Load environment file
	v.SetConfigName(fmt.Sprintf(".env.%s", env))
	v.SetConfigType("env")
	v.AddConfigPath(".") // Look in the project root directory

	// Environment variables take precedence over config file
	v.AutomaticEnv()

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		// Continue even if file is not found
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	if err = v.Unmarshal(&c); err != nil {
		return c, err
	}
	c.CacheDriver = strings.ToLower(c.CacheDriver)
	c.QueueDriver = strings.ToLower(c.QueueDriver)

	err = c.Validate()
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", ":8080")
	// Keys without a default are invisible to Unmarshal under AutomaticEnv
	v.SetDefault("DB_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "clash-results")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("LOG_FILE", "app.log")
	v.SetDefault("CACHE_DRIVER", DriverMemory)
	v.SetDefault("CACHE_TTL", "0s")
	v.SetDefault("QUEUE_DRIVER", DriverMemory)
	v.SetDefault("REDIS_QUEUE_KEY", "clash:queue")
	v.SetDefault("KAFKA_TOPIC", "clash-tasks")
	v.SetDefault("KAFKA_GROUP_ID", "clash-workers")
	v.SetDefault("POLL_INTERVAL", DefaultPollInterval.String())
	v.SetDefault("POLL_TIMEOUT", DefaultPollTimeout.String())
	v.SetDefault("WORKER_CONCURRENCY", DefaultWorkerConcurrency)
	v.SetDefault("EMBEDDED_WORKERS", 0)
	v.SetDefault("DETECTOR_CONCURRENCY", 1)
}

// Validate reports every inconsistent setting at once
func (c Config) Validate() error {
	var err error

	switch c.CacheDriver {
	case DriverMemory:
	case DriverRedis:
		if c.RedisUrl == "" {
			err = multierr.Append(err, fmt.Errorf("REDIS_URL is required for CACHE_DRIVER=%s", c.CacheDriver))
		}
	case DriverPostgres:
		if c.DBUrl == "" {
			err = multierr.Append(err, fmt.Errorf("DB_URL is required for CACHE_DRIVER=%s", c.CacheDriver))
		}
	case DriverMinio:
		if c.MinioEndpoint == "" {
			err = multierr.Append(err, fmt.Errorf("MINIO_ENDPOINT is required for CACHE_DRIVER=%s", c.CacheDriver))
		}
		if c.MinioBucket == "" {
			err = multierr.Append(err, fmt.Errorf("MINIO_BUCKET is required for CACHE_DRIVER=%s", c.CacheDriver))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unknown CACHE_DRIVER %q", c.CacheDriver))
	}

	switch c.QueueDriver {
	case DriverMemory:
	case DriverRedis:
		if c.RedisUrl == "" {
			err = multierr.Append(err, fmt.Errorf("REDIS_URL is required for QUEUE_DRIVER=%s", c.QueueDriver))
		}
	case DriverKafka:
		if len(c.Brokers()) == 0 {
			err = multierr.Append(err, fmt.Errorf("KAFKA_BROKERS is required for QUEUE_DRIVER=%s", c.QueueDriver))
		}
		if c.KafkaTopic == "" {
			err = multierr.Append(err, fmt.Errorf("KAFKA_TOPIC is required for QUEUE_DRIVER=%s", c.QueueDriver))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unknown QUEUE_DRIVER %q", c.QueueDriver))
	}

	if c.PollInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("POLL_INTERVAL must be positive, got %v", c.PollInterval))
	}
	if c.PollTimeout < c.PollInterval {
		err = multierr.Append(err, fmt.Errorf("POLL_TIMEOUT %v is shorter than POLL_INTERVAL %v", c.PollTimeout, c.PollInterval))
	}
	if c.CacheTTL < 0 {
		err = multierr.Append(err, fmt.Errorf("CACHE_TTL must not be negative, got %v", c.CacheTTL))
	}
	if c.WorkerConcurrency < 1 {
		err = multierr.Append(err, fmt.Errorf("WORKER_CONCURRENCY must be at least 1, got %d", c.WorkerConcurrency))
	}
	if c.EmbeddedWorkers < 0 {
		err = multierr.Append(err, fmt.Errorf("EMBEDDED_WORKERS must not be negative, got %d", c.EmbeddedWorkers))
	}
	if c.DetectorConcurrency < 1 {
		err = multierr.Append(err, fmt.Errorf("DETECTOR_CONCURRENCY must be at least 1, got %d", c.DetectorConcurrency))
	}

	return err
}

// InProcessWorkers returns how many workers cmd/main should start. A memory
// queue is only drained in-process, so it always gets at least
// WORKER_CONCURRENCY workers.
func (c Config) InProcessWorkers() int {
	if c.QueueDriver == DriverMemory && c.EmbeddedWorkers == 0 {
		return c.WorkerConcurrency
	}
	return c.EmbeddedWorkers
}

// Brokers splits KAFKA_BROKERS on commas
func (c Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
