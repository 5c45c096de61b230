package task

import (
	"context"
	"sync"

	"buildingclash/internal/model"
)

// MemoryQueue is a buffered channel queue for single-process deployments
// and tests. Messages are not redelivered.
type MemoryQueue struct {
	ch        chan model.TaskMessage
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryQueue creates a queue holding up to size pending messages
func NewMemoryQueue(size int) *MemoryQueue {
	if size < 1 {
		size = 1
	}
	return &MemoryQueue{
		ch:   make(chan model.TaskMessage, size),
		done: make(chan struct{}),
	}
}

func (q *MemoryQueue) Publish(ctx context.Context, msg model.TaskMessage) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.ch <- msg:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Receive(ctx context.Context) (*Delivery, error) {
	select {
	case msg := <-q.ch:
		return NewDelivery(msg, nil), nil
	case <-q.done:
		return nil, ErrQueueClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of messages waiting
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}

func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}
