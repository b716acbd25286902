// Package events handles event emission for alert lifecycle changes
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/elitefinder/sentinela/pkg/kafka"
	"github.com/elitefinder/sentinela/pkg/models"
	"github.com/elitefinder/sentinela/pkg/tracing"
)

// Event types published to the alert events topic.
const (
	EventAlertCreated  = "alert.created"
	EventAlertRead     = "alert.read"
	EventAlertResolved = "alert.resolved"
)

// Publisher publishes alert events; satisfied by kafka.Producer.
type Publisher interface {
	PublishAlertEvent(ctx context.Context, event *kafka.AlertEvent) error
}

// Emitter publishes alert lifecycle events for downstream consumers.
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new alert event emitter
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

// EmitAlertCreated emits an alert.created event
func (e *Emitter) EmitAlertCreated(ctx context.Context, alert *models.Alert) error {
	return e.emit(ctx, EventAlertCreated, alert)
}

// EmitAlertRead emits an alert.read event
func (e *Emitter) EmitAlertRead(ctx context.Context, alert *models.Alert) error {
	return e.emit(ctx, EventAlertRead, alert)
}

// EmitAlertResolved emits an alert.resolved event
func (e *Emitter) EmitAlertResolved(ctx context.Context, alert *models.Alert) error {
	return e.emit(ctx, EventAlertResolved, alert)
}

func (e *Emitter) emit(ctx context.Context, eventType string, alert *models.Alert) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.emit")
	defer span.End()

	event := &kafka.AlertEvent{
		EventType:      eventType,
		TenantID:       alert.TenantID,
		AlertID:        alert.ID,
		ConversationID: alert.ConversationID,
		Type:           alert.Type,
		Category:       alert.Category,
		Message:        alert.Message,
	}

	if err := e.publisher.PublishAlertEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s event", eventType)
		return err
	}

	return nil
}
