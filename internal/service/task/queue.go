package task

import (
	"context"
	"errors"

	"buildingclash/internal/model"
)

// ErrQueueClosed is returned by Receive once the queue has been shut down
var ErrQueueClosed = errors.New("queue closed")

// Publisher enqueues task messages
type Publisher interface {
	Publish(ctx context.Context, msg model.TaskMessage) error
}

// Consumer hands out task messages one at a time. Receive blocks until a
// message is available or ctx is done.
type Consumer interface {
	Receive(ctx context.Context) (*Delivery, error)
}

// Queue is both ends of a work queue
type Queue interface {
	Publisher
	Consumer
	Close() error
}

// Delivery is a received message that must be acknowledged once handled.
// An unacknowledged delivery may be handed out again by backends that
// support redelivery.
type Delivery struct {
	Message model.TaskMessage
	ack     func(ctx context.Context) error
}

// NewDelivery wraps msg with an acknowledgement callback, which may be nil
func NewDelivery(msg model.TaskMessage, ack func(ctx context.Context) error) *Delivery {
	return &Delivery{Message: msg, ack: ack}
}

// Ack confirms the message has been fully processed
func (d *Delivery) Ack(ctx context.Context) error {
	if d.ack == nil {
		return nil
	}
	return d.ack(ctx)
}
