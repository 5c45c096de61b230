package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"buildingclash/internal/config"
	"buildingclash/internal/model"
)

// InputValidator rejects bodies that a worker could never process
type InputValidator interface {
	Validate(raw []byte) ([]model.BuildingFeature, error)
}

// Options tunes the bounded wait performed by Submit
type Options struct {
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Outcome is the answer to a submit or status request
type Outcome struct {
	Status model.TaskStatus
	TaskID string
	Result *model.FeatureCollection
}

// Dispatcher answers submits from the cache, or enqueues the work and waits
// a bounded time for a worker to fill the cache entry.
type Dispatcher struct {
	cache     Cache
	queue     Publisher
	validator InputValidator
	opts      Options
}

// NewDispatcher creates a dispatcher. Zero options fall back to the defaults.
func NewDispatcher(cache Cache, queue Publisher, validator InputValidator, opts Options) *Dispatcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = config.DefaultPollInterval
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = config.DefaultPollTimeout
	}
	return &Dispatcher{cache: cache, queue: queue, validator: validator, opts: opts}
}

// Submit handles a raw body. A cache hit returns immediately without
// enqueueing. Otherwise one message is published and the cache is polled
// until the result appears, the timeout elapses, or ctx is done; the latter
// two yield a pending outcome carrying the task id.
func (d *Dispatcher) Submit(ctx context.Context, body []byte) (Outcome, error) {
	if !json.Valid(body) {
		return Outcome{}, ErrMalformedInput
	}
	if d.validator != nil {
		if _, err := d.validator.Validate(body); err != nil {
			return Outcome{}, err
		}
	}

	taskID, err := TaskID(body)
	if err != nil {
		return Outcome{}, err
	}

	result, found, err := d.cache.Get(ctx, taskID)
	if err != nil {
		return Outcome{}, fmt.Errorf("lookup task %s: %w", taskID, err)
	}
	if found {
		return Outcome{Status: model.TaskStatusComplete, TaskID: taskID, Result: &result}, nil
	}

	msg := model.TaskMessage{TaskID: taskID, Input: json.RawMessage(body)}
	if err := d.queue.Publish(ctx, msg); err != nil {
		return Outcome{}, fmt.Errorf("enqueue task %s: %w", taskID, err)
	}
	log.Printf("Task %s enqueued, waiting up to %v", taskID, d.opts.PollTimeout)

	if result, found := d.poll(ctx, taskID); found {
		return Outcome{Status: model.TaskStatusComplete, TaskID: taskID, Result: result}, nil
	}
	return Outcome{Status: model.TaskStatusPending, TaskID: taskID}, nil
}

// Lookup reports a finished result or absence. It never enqueues.
func (d *Dispatcher) Lookup(ctx context.Context, taskID string) (Outcome, error) {
	result, found, err := d.cache.Get(ctx, taskID)
	if err != nil {
		return Outcome{}, fmt.Errorf("lookup task %s: %w", taskID, err)
	}
	if !found {
		return Outcome{Status: model.TaskStatusAbsent, TaskID: taskID}, nil
	}
	return Outcome{Status: model.TaskStatusComplete, TaskID: taskID, Result: &result}, nil
}

// poll reads the cache right away and then once per interval, with a last
// read when the timeout fires. Read errors are logged and the wait continues.
func (d *Dispatcher) poll(ctx context.Context, taskID string) (*model.FeatureCollection, bool) {
	deadline := time.NewTimer(d.opts.PollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(d.opts.PollInterval)
	defer ticker.Stop()

	for {
		if result, found := d.read(ctx, taskID); found {
			return result, true
		}

		select {
		case <-ticker.C:
		case <-deadline.C:
			if result, found := d.read(ctx, taskID); found {
				return result, true
			}
			log.Printf("Task %s still pending after %v", taskID, d.opts.PollTimeout)
			return nil, false
		case <-ctx.Done():
			return nil, false
		}
	}
}

func (d *Dispatcher) read(ctx context.Context, taskID string) (*model.FeatureCollection, bool) {
	result, found, err := d.cache.Get(ctx, taskID)
	if err != nil {
		log.Printf("Error polling task %s: %v", taskID, err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &result, true
}
