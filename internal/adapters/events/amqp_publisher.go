package events

import (
	"context"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const batchCompletedRoutingKey = "dispatch.batch.completed"

// publishChannel is the subset of *amqp.Channel the publisher needs.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	GetNextPublishSeqNo() uint64
}

// AMQPPublisher sends batch completion events to a topic exchange and waits
// for the broker to confirm each one.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       publishChannel
	acks     <-chan amqp.Confirmation
	exchange string

	mu sync.Mutex
}

// Connect to the broker, declare the exchange and enable publisher confirms.
func DialAMQP(url, exchange string) (*AMQPPublisher, error) {
	if url == "" {
		return nil, errors.New("dial amqp: url must not be empty")
	}
	if exchange == "" {
		return nil, errors.New("dial amqp: exchange must not be empty")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("dial amqp: open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("dial amqp: declare exchange %q: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("dial amqp: enable confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 16))

	p := newAMQPPublisher(ch, acks, exchange)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch publishChannel, acks <-chan amqp.Confirmation, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, acks: acks, exchange: exchange}
}

func (p *AMQPPublisher) PublishBatchCompleted(ctx context.Context, evt ports.BatchCompletedEvent) (err error) {
	defer obs.Time(ctx, "events.amqp.PublishBatchCompleted")(&err)

	msg, err := newBatchCompletedMessage(evt)
	if err != nil {
		return err
	}

	// Confirms arrive in publish order, so publishes are serialized.
	p.mu.Lock()
	defer p.mu.Unlock()

	tag := p.ch.GetNextPublishSeqNo()
	if err := p.ch.PublishWithContext(ctx, p.exchange, batchCompletedRoutingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish batch completed run_id=%s: %w", evt.RunID, err)
	}

	if err := p.awaitConfirm(ctx, tag); err != nil {
		return fmt.Errorf("publish batch completed run_id=%s: %w", evt.RunID, err)
	}
	return nil
}

// awaitConfirm consumes confirmations until the one for tag arrives.
// Confirms for earlier publishes that gave up on their context are discarded.
func (p *AMQPPublisher) awaitConfirm(ctx context.Context, tag uint64) error {
	for {
		select {
		case conf, ok := <-p.acks:
			if !ok {
				return errors.New("confirm channel closed")
			}
			if conf.DeliveryTag < tag {
				continue
			}
			if conf.DeliveryTag > tag {
				return fmt.Errorf("confirm for delivery tag %d skipped past %d", conf.DeliveryTag, tag)
			}
			if !conf.Ack {
				return fmt.Errorf("broker nack for delivery tag %d", tag)
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *AMQPPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

type batchCompletedBody struct {
	RunID       string    `json:"run_id"`
	DriverCount int       `json:"driver_count"`
	OrderCount  int       `json:"order_count"`
	Fulfilled   int       `json:"fulfilled"`
	Unfulfilled int       `json:"unfulfilled"`
	CompletedAt time.Time `json:"completed_at"`
}

func newBatchCompletedMessage(evt ports.BatchCompletedEvent) (amqp.Publishing, error) {
	if evt.RunID == "" {
		return amqp.Publishing{}, errors.New("batch completed message: run id must not be empty")
	}

	body, err := json.Marshal(batchCompletedBody{
		RunID:       evt.RunID,
		DriverCount: evt.DriverCount,
		OrderCount:  evt.OrderCount,
		Fulfilled:   evt.Fulfilled,
		Unfulfilled: evt.Unfulfilled,
		CompletedAt: evt.CompletedAt.UTC(),
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("batch completed message: %w", err)
	}

	return amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     evt.RunID,
		CorrelationId: evt.RunID,
		Timestamp:     evt.CompletedAt.UTC(),
		Headers:       amqp.Table{"x-source": "delivery-dispatch-service"},
		Body:          body,
	}, nil
}
