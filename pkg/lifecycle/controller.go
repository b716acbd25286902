// Package lifecycle drives alert state transitions. Alerts move forward
// only: unread to read, active to resolved, and never back.
package lifecycle

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/elitefinder/sentinela/pkg/models"
	"github.com/elitefinder/sentinela/pkg/tracing"
)

// AlertStore is the persistence surface the controller transitions against.
type AlertStore interface {
	MarkRead(ctx context.Context, scope models.Scope, id int64) (*models.Alert, error)
	MarkResolved(ctx context.Context, scope models.Scope, id int64) (*models.Alert, error)
}

// EventEmitter announces lifecycle transitions. Optional.
type EventEmitter interface {
	EmitAlertRead(ctx context.Context, alert *models.Alert) error
	EmitAlertResolved(ctx context.Context, alert *models.Alert) error
}

// Controller applies lifecycle transitions to alerts. Transitions are
// idempotent: repeating one returns the alert with its original timestamps.
type Controller struct {
	store   AlertStore
	emitter EventEmitter
	logger  ectologger.Logger
}

// NewController creates a new lifecycle controller. emitter may be nil when
// event publishing is disabled.
func NewController(store AlertStore, emitter EventEmitter, logger ectologger.Logger) *Controller {
	return &Controller{
		store:   store,
		emitter: emitter,
		logger:  logger,
	}
}

// MarkRead marks the alert as read within scope.
func (c *Controller) MarkRead(ctx context.Context, scope models.Scope, id int64) (*models.Alert, error) {
	ctx, span := tracing.StartSpan(ctx, "lifecycle.Controller.MarkRead")
	defer span.End()

	alert, err := c.store.MarkRead(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if c.emitter != nil {
		if err := c.emitter.EmitAlertRead(ctx, alert); err != nil {
			c.logger.WithContext(ctx).WithError(err).Warn("Failed to emit alert read event")
		}
	}

	return alert, nil
}

// MarkResolved marks the alert as resolved within scope. Resolving also
// marks the alert read.
func (c *Controller) MarkResolved(ctx context.Context, scope models.Scope, id int64) (*models.Alert, error) {
	ctx, span := tracing.StartSpan(ctx, "lifecycle.Controller.MarkResolved")
	defer span.End()

	alert, err := c.store.MarkResolved(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if c.emitter != nil {
		if err := c.emitter.EmitAlertResolved(ctx, alert); err != nil {
			c.logger.WithContext(ctx).WithError(err).Warn("Failed to emit alert resolved event")
		}
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"id":        alert.ID,
		"tenant_id": alert.TenantID,
	}).Info("Resolved alert")

	return alert, nil
}
