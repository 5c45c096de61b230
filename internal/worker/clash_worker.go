package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"buildingclash/internal/config"
	"buildingclash/internal/model"
	"buildingclash/internal/service/clash"
	"buildingclash/internal/service/task"
	"buildingclash/internal/util"
)

// ErrTaskIDMismatch marks a message whose id is not the digest of its input
var ErrTaskIDMismatch = errors.New("task id does not match input")

// Executor computes the clash report for a raw submit body
type Executor interface {
	Execute(raw []byte) (model.FeatureCollection, error)
}

// ClashWorker consumes task messages, computes the report and stores it
// under the task id. It never reads the cache before computing, so a
// redelivered message is recomputed and rewritten with the same value.
type ClashWorker struct {
	id         string
	consumer   task.Consumer
	cache      task.Cache
	executor   Executor
	retryDelay time.Duration

	storeAttempts int
	storeDelay    time.Duration
}

// NewClashWorker creates a worker with a random id used in logs
func NewClashWorker(consumer task.Consumer, cache task.Cache, executor Executor) *ClashWorker {
	return &ClashWorker{
		id:         util.ShortUUID(),
		consumer:   consumer,
		cache:      cache,
		executor:   executor,
		retryDelay: config.WorkerRetryDelay,

		storeAttempts: config.StoreAttempts,
		storeDelay:    config.StoreRetryDelay,
	}
}

// ID returns the worker id
func (w *ClashWorker) ID() string {
	return w.id
}

// Run receives and handles messages until ctx is done or the queue closes
func (w *ClashWorker) Run(ctx context.Context) {
	log.Printf("Clash worker %s started", w.id)
	defer log.Printf("Clash worker %s stopped", w.id)

	for {
		delivery, err := w.consumer.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, task.ErrQueueClosed) {
				return
			}
			log.Printf("Clash worker %s: receive failed: %v", w.id, err)
			select {
			case <-time.After(w.retryDelay):
				continue
			case <-ctx.Done():
				return
			}
		}

		w.handle(ctx, delivery)
	}
}

// handle acknowledges a message once it is stored or its input is known to
// fail every time. A store that still fails after every retry is logged and
// left unacknowledged. No backend hands such a message out again to a running
// consumer, so the task stays absent until the client resubmits it.
func (w *ClashWorker) handle(ctx context.Context, delivery *task.Delivery) {
	taskID := delivery.Message.TaskID
	err := w.Process(ctx, delivery.Message)

	switch {
	case err == nil:
	case isPermanent(err):
		log.Printf("Clash worker %s: dropping task %s: %v", w.id, taskID, err)
	default:
		log.Printf("Clash worker %s: task %s failed: %v", w.id, taskID, err)
		return
	}

	if err := delivery.Ack(ctx); err != nil {
		log.Printf("Clash worker %s: ack task %s: %v", w.id, taskID, err)
	}
}

// Process computes and stores the result of one message
func (w *ClashWorker) Process(ctx context.Context, msg model.TaskMessage) error {
	startTime := time.Now()

	digest, err := task.TaskID(msg.Input)
	if err != nil {
		return err
	}
	if digest != msg.TaskID {
		return fmt.Errorf("%w: got %s, input hashes to %s", ErrTaskIDMismatch, msg.TaskID, digest)
	}

	result, err := w.executor.Execute(msg.Input)
	if err != nil {
		return fmt.Errorf("compute task %s: %w", msg.TaskID, err)
	}

	if err := w.store(ctx, msg.TaskID, result); err != nil {
		return fmt.Errorf("store task %s: %w", msg.TaskID, err)
	}

	log.Printf("Clash worker %s: task %s stored, %d clashes in %v",
		w.id, msg.TaskID, len(result.Features), time.Since(startTime))
	return nil
}

// store writes result, retrying with doubling delays. Writes are idempotent.
func (w *ClashWorker) store(ctx context.Context, taskID string, result model.FeatureCollection) error {
	delay := w.storeDelay
	for attempt := 1; ; attempt++ {
		err := w.cache.Put(ctx, taskID, result)
		if err == nil || attempt >= w.storeAttempts {
			return err
		}
		log.Printf("Clash worker %s: store task %s failed (attempt %d/%d), retrying in %v: %v",
			w.id, taskID, attempt, w.storeAttempts, delay, err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return err
		}
		delay *= 2
	}
}

func isPermanent(err error) bool {
	var verr *clash.ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, clash.ErrInvalidJSON) ||
		errors.Is(err, clash.ErrGeometry) ||
		errors.Is(err, task.ErrMalformedInput) ||
		errors.Is(err, ErrTaskIDMismatch)
}
