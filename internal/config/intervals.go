package config

import "time"

// Dispatcher and worker timing defaults
const (
	// DefaultPollInterval is how often a waiting submit re-reads the cache
	DefaultPollInterval = 1 * time.Second

	// DefaultPollTimeout bounds how long a submit waits before answering pending
	DefaultPollTimeout = 10 * time.Second

	// DefaultWorkerConcurrency is the number of tasks one worker process runs at once
	DefaultWorkerConcurrency = 4

	// WorkerRetryDelay is the pause after a failed receive
	WorkerRetryDelay = 1 * time.Second

	// StoreAttempts is how many times a worker writes a result before giving up
	StoreAttempts = 4

	// StoreRetryDelay is the pause before the first store retry, doubled after each one
	StoreRetryDelay = 250 * time.Millisecond

	// ShutdownTimeout bounds graceful HTTP shutdown
	ShutdownTimeout = 10 * time.Second
)
