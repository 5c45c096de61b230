package app

import (
	"testing"
	"time"

	"buildingclash/internal/config"
	"buildingclash/internal/service/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackendsMemory(t *testing.T) {
	cfg := config.Config{
		CacheDriver:  config.DriverMemory,
		QueueDriver:  config.DriverMemory,
		PollInterval: time.Second,
		PollTimeout:  time.Second,
	}

	b, err := OpenBackends(cfg)
	require.NoError(t, err)

	assert.IsType(t, &task.MemoryCache{}, b.Cache)
	assert.IsType(t, &task.MemoryQueue{}, b.Queue)
	assert.NoError(t, b.Close())
}

func TestOpenBackendsUnknownDriver(t *testing.T) {
	_, err := OpenBackends(config.Config{CacheDriver: "dynamo", QueueDriver: config.DriverMemory})
	assert.ErrorContains(t, err, `unknown cache driver "dynamo"`)

	_, err = OpenBackends(config.Config{CacheDriver: config.DriverMemory, QueueDriver: "sqs"})
	assert.ErrorContains(t, err, `unknown queue driver "sqs"`)
}
