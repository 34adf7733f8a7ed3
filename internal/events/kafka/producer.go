package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shoplite/auth-service/internal/domain/service"
)

// CloudEvent is the envelope for events on the platform bus (CloudEvents 1.0).
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data,omitempty"`
}

const (
	cloudEventSpecVersion     = "1.0"
	cloudEventDataContentType = "application/json"
)

// Producer publishes CloudEvents to a fixed topic through a synchronous,
// idempotent Kafka producer.
type Producer struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
	topic    string
	source   string
}

// NewProducer connects to the brokers. source identifies this service in the
// CloudEvent envelope, e.g. "/auth-service".
func NewProducer(brokers []string, topic string, source string, logger *zap.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1 // required for the idempotent producer

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &Producer{
		producer: producer,
		logger:   logger.Named("kafka_producer"),
		topic:    topic,
		source:   source,
	}, nil
}

// Publish wraps the payload in a CloudEvent and sends it. The subject keys
// the message so events for one user stay ordered within a partition.
func (p *Producer) Publish(ctx context.Context, eventType string, subject string, payload interface{}) error {
	return p.PublishToTopic(ctx, p.topic, eventType, subject, payload)
}

// PublishToTopic is Publish with an explicit topic, used by the notifier to
// target the notifications pipeline.
func (p *Producer) PublishToTopic(ctx context.Context, topic string, eventType string, subject string, payload interface{}) error {
	event := CloudEvent{
		SpecVersion:     cloudEventSpecVersion,
		ID:              uuid.New().String(),
		Source:          p.source,
		Type:            eventType,
		Subject:         subject,
		Time:            time.Now().UTC(),
		DataContentType: cloudEventDataContentType,
		Data:            payload,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal CloudEvent: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(eventJSON),
	}
	if subject != "" {
		msg.Key = sarama.StringEncoder(subject)
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("Failed to send CloudEvent",
			zap.Error(err),
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.String("event_id", event.ID),
		)
		return fmt.Errorf("failed to send CloudEvent to Kafka: %w", err)
	}

	p.logger.Debug("CloudEvent sent",
		zap.String("topic", topic),
		zap.String("event_type", eventType),
		zap.String("event_id", event.ID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

var _ service.EventPublisher = (*Producer)(nil)
