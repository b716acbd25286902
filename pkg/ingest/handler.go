// Package ingest consumes finalized analysis records from Kafka and feeds
// them to the rule engine.
package ingest

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/elitefinder/sentinela/pkg/kafka"
	"github.com/elitefinder/sentinela/pkg/models"
	"github.com/elitefinder/sentinela/pkg/redis"
	"github.com/elitefinder/sentinela/pkg/tracing"
)

// Evaluator runs the alerting rules over a record; satisfied by
// engine.Engine.
type Evaluator interface {
	Evaluate(ctx context.Context, rec models.AnalysisRecord, source string) (*models.EvaluationResult, error)
}

// DeadLetter receives messages that could not be processed; satisfied by
// redis.DeadLetterQueue.
type DeadLetter interface {
	Add(ctx context.Context, entry *redis.DLQEntry) (string, error)
}

// Handler processes analysis messages from the analysis topic. Messages that
// fail to parse or evaluate are routed to the dead letter queue and the
// offset is committed; the stream never blocks on a poison message.
type Handler struct {
	evaluator Evaluator
	dlq       DeadLetter
	logger    ectologger.Logger
}

// NewHandler creates a new ingestion handler. dlq may be nil when no DLQ is
// configured; failed messages are then only logged.
func NewHandler(evaluator Evaluator, dlq DeadLetter, logger ectologger.Logger) *Handler {
	return &Handler{
		evaluator: evaluator,
		dlq:       dlq,
		logger:    logger,
	}
}

// HandleMessage is the kafka.MessageHandler for the analysis topic.
func (h *Handler) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "ingest.Handler.HandleMessage")
	defer span.End()

	log := h.logger.WithContext(ctx).WithFields(map[string]any{
		"topic":  msg.Topic,
		"offset": msg.Offset,
	})

	if err := msg.ParseAnalysis(); err != nil {
		log.WithError(err).Error("Failed to parse analysis message")
		h.deadLetter(ctx, msg, redis.DLQReasonParseError, err)
		return err
	}

	rec := *msg.Analysis
	tracing.AddAttribute(ctx, "tenant_id", rec.TenantID)

	result, err := h.evaluator.Evaluate(ctx, rec, "kafka")
	if err != nil {
		log.WithError(err).WithFields(map[string]any{
			"tenant_id":       rec.TenantID,
			"conversation_id": rec.ConversationID,
		}).Error("Failed to evaluate analysis message")
		h.deadLetter(ctx, msg, redis.DLQReasonEvaluationFailed, err)
		return err
	}

	log.WithFields(map[string]any{
		"tenant_id":      rec.TenantID,
		"rules_matched":  result.RulesMatched,
		"alerts_created": result.AlertsCreated,
	}).Debug("Processed analysis message")

	return nil
}

func (h *Handler) deadLetter(ctx context.Context, msg *kafka.IncomingMessage, reason string, cause error) {
	if h.dlq == nil {
		return
	}

	entry := &redis.DLQEntry{
		TenantID:     msg.GetTenantID(),
		Payload:      msg.Value,
		Reason:       reason,
		ErrorMessage: cause.Error(),
	}

	if _, err := h.dlq.Add(ctx, entry); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to dead letter analysis message")
	}
}
