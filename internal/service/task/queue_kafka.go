package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"buildingclash/internal/model"

	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"
)

// KafkaQueue publishes task messages to a topic and consumes them through a
// consumer group. Offsets are committed on Ack. All workers of a process share
// one reader and a commit covers every earlier offset of the partition, so an
// unacknowledged message is only read again after the process restarts, and
// not at all once a later message of its partition is acked.
type KafkaQueue struct {
	brokers []string
	topic   string
	groupID string

	writer *kafka.Writer

	mu     sync.Mutex
	reader *kafka.Reader
	closed bool
}

// NewKafkaQueue creates a queue on topic. The reader joins groupID lazily on
// the first Receive, so publish-only processes never join the group.
func NewKafkaQueue(brokers []string, topic, groupID string) *KafkaQueue {
	return &KafkaQueue{
		brokers: brokers,
		topic:   topic,
		groupID: groupID,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (q *KafkaQueue) Publish(ctx context.Context, msg model.TaskMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode task message %s: %w", msg.TaskID, err)
	}
	err = q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.TaskID),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("kafka write %s: %w", q.topic, err)
	}
	return nil
}

func (q *KafkaQueue) Receive(ctx context.Context) (*Delivery, error) {
	reader, err := q.getReader()
	if err != nil {
		return nil, err
	}
	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil, ErrQueueClosed
			}
			return nil, fmt.Errorf("kafka fetch %s: %w", q.topic, err)
		}

		var msg model.TaskMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.Printf("Dropping malformed task message at %s/%d/%d: %v", m.Topic, m.Partition, m.Offset, err)
			if err := reader.CommitMessages(ctx, m); err != nil {
				return nil, fmt.Errorf("kafka commit %s: %w", q.topic, err)
			}
			continue
		}

		return NewDelivery(msg, func(ctx context.Context) error {
			return reader.CommitMessages(ctx, m)
		}), nil
	}
}

// Close stops the writer and the reader, if one was started. Later calls to
// Receive return ErrQueueClosed.
func (q *KafkaQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true

	err := q.writer.Close()
	if q.reader != nil {
		err = multierr.Append(err, q.reader.Close())
	}
	return err
}

func (q *KafkaQueue) getReader() (*kafka.Reader, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}
	if q.reader == nil {
		q.reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  q.brokers,
			Topic:    q.topic,
			GroupID:  q.groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		})
	}
	return q.reader, nil
}
