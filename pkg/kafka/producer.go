package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/elitefinder/sentinela/pkg/models"
	"github.com/elitefinder/sentinela/pkg/tracing"
)

// Producer publishes alert lifecycle events
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// AlertEvent is published whenever an alert is created or changes lifecycle
// state. Event types: alert.created, alert.read, alert.resolved.
type AlertEvent struct {
	EventType      string               `json:"event_type"`
	TenantID       string               `json:"tenant_id"`
	AlertID        int64                `json:"alert_id"`
	ConversationID int64                `json:"conversation_id"`
	Type           models.AlertType     `json:"type"`
	Category       models.AlertCategory `json:"category"`
	Message        string               `json:"message"`
	Timestamp      time.Time            `json:"timestamp"`
}

// PublishAlertEvent publishes an alert event to Kafka
func (p *Producer) PublishAlertEvent(ctx context.Context, event *AlertEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishAlertEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(strconv.FormatInt(event.AlertID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "tenant_id", Value: []byte(event.TenantID)},
			{Key: "alert_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish alert event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type": event.EventType,
		"alert_id":   event.AlertID,
		"alert_type": event.Type,
	}).Debug("Published alert event")

	return nil
}
