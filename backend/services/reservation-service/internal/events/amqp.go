package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPConfig configures AMQPPublisher.
type AMQPConfig struct {
	URL   string
	Queue string
}

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends events as persistent JSON messages to a durable queue through the
// default exchange.
type AMQPPublisher struct {
	mu     sync.Mutex
	conn   io.Closer
	ch     amqpChannel
	queue  string
	logger *zap.Logger
}

// NewAMQPPublisher dials the broker and declares the queue.
func NewAMQPPublisher(cfg AMQPConfig, logger *zap.Logger) (*AMQPPublisher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("events: amqp url is required")
	}
	if strings.TrimSpace(cfg.Queue) == "" {
		return nil, errors.New("events: amqp queue is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("events: amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("events: amqp queue declare: %w", err)
	}
	pub := newAMQPPublisherWithChannel(ch, cfg.Queue, logger)
	pub.conn = conn
	return pub, nil
}

func newAMQPPublisherWithChannel(ch amqpChannel, queue string, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, queue: queue, logger: logger}
}

// Publish implements Publisher. amqp channels are not safe for concurrent publishing.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", event.Type, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("events: amqp publish %s: %w", event.Type, err)
	}
	p.logger.Debug("event published", zap.String("queue", p.queue), zap.String("type", event.Type), zap.String("event_id", event.ID))
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}
