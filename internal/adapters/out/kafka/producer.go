// Package kafka publishes committed order changes to a Kafka topic so that
// other services can follow the order lifecycle.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/ports"

	skafka "github.com/segmentio/kafka-go"
)

var _ ports.EventHandler = (*OrderEventProducer)(nil)

// Writer is the subset of kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// OrderChanged is the message value. The message key is the order id so that
// all changes of one order land on the same partition.
type OrderChanged struct {
	OrderID    string    `json:"orderId"`
	CustomerID string    `json:"customerId"`
	VendorID   string    `json:"vendorId"`
	RiderID    string    `json:"riderId,omitempty"`
	Status     string    `json:"status"`
	Type       string    `json:"type"`
	Recipient  string    `json:"recipient"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurredAt"`
}

const (
	// DefaultQueueSize bounds the messages waiting for the broker.
	DefaultQueueSize = 1024
	maxBatch         = 100
	writeTimeout     = 10 * time.Second
)

// ErrQueueFull is returned by Handle when the broker falls behind and the
// queue has no room left. The event is dropped.
var ErrQueueFull = errors.New("kafka producer queue is full")

// ErrProducerClosed is returned by Handle after Close.
var ErrProducerClosed = errors.New("kafka producer is closed")

// OrderEventProducer writes one message per order event. Handle only enqueues;
// a background worker sends batches to the broker.
type OrderEventProducer struct {
	writer Writer
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan skafka.Message
	done   chan struct{}
}

// NewOrderEventProducer creates a producer writing to topic on broker.
func NewOrderEventProducer(broker, topic string, logger *slog.Logger) *OrderEventProducer {
	return NewOrderEventProducerWithWriter(&skafka.Writer{
		Addr:                   skafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &skafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}, logger)
}

// NewOrderEventProducerWithWriter allows injecting a custom writer.
func NewOrderEventProducerWithWriter(w Writer, logger *slog.Logger) *OrderEventProducer {
	p := &OrderEventProducer{
		writer: w,
		logger: logger,
		queue:  make(chan skafka.Message, DefaultQueueSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Handle implements ports.EventHandler.
func (p *OrderEventProducer) Handle(ctx context.Context, event order.Event) error {
	value := OrderChanged{
		OrderID:    event.OrderID.String(),
		CustomerID: event.CustomerID.String(),
		VendorID:   event.VendorID.String(),
		Status:     event.Status.String(),
		Type:       string(event.Notification.Type),
		Recipient:  event.Notification.Recipient.String(),
		Message:    event.Notification.Message,
		OccurredAt: event.Notification.CreatedAt,
	}
	if event.RiderID != nil {
		value.RiderID = event.RiderID.String()
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := skafka.Message{Key: []byte(value.OrderID), Value: b, Time: value.OccurredAt}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	select {
	case p.queue <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("%w: order %s", ErrQueueFull, value.OrderID)
	}
}

func (p *OrderEventProducer) run() {
	defer close(p.done)

	for msg := range p.queue {
		batch := []skafka.Message{msg}
	drain:
		for len(batch) < maxBatch {
			select {
			case next, ok := <-p.queue:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		p.write(batch)
	}
}

func (p *OrderEventProducer) write(batch []skafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, batch...); err != nil {
		p.logger.Error("failed to publish order events",
			slog.Int("count", len(batch)),
			slog.String("firstOrderId", string(batch[0].Key)),
			slog.Any("error", err))
	}
}

// Close stops accepting events, waits for the queued ones to be written and
// closes the underlying writer.
func (p *OrderEventProducer) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}
