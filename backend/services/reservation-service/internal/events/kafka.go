package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures KafkaPublisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher writes events to a topic keyed by user id, so one user's events stay ordered.
type KafkaPublisher struct {
	writer kafkaMessageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaPublisher builds a publisher with a hash-balanced writer.
func NewKafkaPublisher(cfg KafkaConfig, logger *zap.Logger) (*KafkaPublisher, error) {
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("events: kafka topic is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("events: at least one kafka broker is required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisherWithWriter(writer, cfg.Topic, logger), nil
}

func newKafkaPublisherWithWriter(writer kafkaMessageWriter, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, logger: logger}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", event.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
			{Key: "id", Value: []byte(event.ID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: kafka write %s: %w", event.Type, err)
	}
	p.logger.Debug("event published", zap.String("topic", p.topic), zap.String("type", event.Type), zap.String("event_id", event.ID))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
