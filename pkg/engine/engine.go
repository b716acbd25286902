package engine

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/elitefinder/sentinela/pkg/metrics"
	"github.com/elitefinder/sentinela/pkg/models"
	"github.com/elitefinder/sentinela/pkg/tracing"
)

// AlertStore persists alerts produced by the engine.
type AlertStore interface {
	Create(ctx context.Context, draft models.AlertDraft) (*models.Alert, error)
}

// EventEmitter announces newly created alerts. Optional.
type EventEmitter interface {
	EmitAlertCreated(ctx context.Context, alert *models.Alert) error
}

// Engine runs the alerting rules over analysis records and persists the
// resulting alerts.
type Engine struct {
	store   AlertStore
	emitter EventEmitter
	logger  ectologger.Logger
}

// NewEngine creates a new rule engine. emitter may be nil when event
// publishing is disabled.
func NewEngine(store AlertStore, emitter EventEmitter, logger ectologger.Logger) *Engine {
	return &Engine{
		store:   store,
		emitter: emitter,
		logger:  logger,
	}
}

// Evaluate runs every rule against the record and persists each matching
// draft independently. One draft failing to persist never blocks the others;
// failures are reported alongside the alerts that did get created. source
// labels the metrics (http, kafka).
func (e *Engine) Evaluate(ctx context.Context, rec models.AnalysisRecord, source string) (*models.EvaluationResult, error) {
	ctx, span := tracing.StartSpan(ctx, "engine.Engine.Evaluate")
	defer span.End()

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"method":          "Evaluate",
		"tenant_id":       rec.TenantID,
		"conversation_id": rec.ConversationID,
		"sentiment":       rec.Sentiment,
		"score":           rec.Score,
	})

	if err := validateRecord(rec); err != nil {
		return nil, err
	}

	metrics.EvaluationsTotal.With(prometheus.Labels{
		"tenant_id": rec.TenantID,
		"source":    source,
	}).Inc()

	drafts := EvaluateRules(rec)

	result := &models.EvaluationResult{
		Evaluated:    true,
		RulesMatched: len(drafts),
		Alerts:       []models.Alert{},
	}

	for _, draft := range drafts {
		alert, err := e.store.Create(ctx, draft)
		if err != nil {
			log.WithError(err).WithFields(map[string]any{
				"category": draft.Category,
				"type":     draft.Type,
			}).Error("Failed to persist alert for matched rule")
			metrics.RuleInsertFailuresTotal.With(prometheus.Labels{
				"tenant_id": draft.TenantID,
				"category":  string(draft.Category),
			}).Inc()
			result.Failures = append(result.Failures, string(draft.Category)+": "+err.Error())
			continue
		}

		result.AlertsCreated++
		result.Alerts = append(result.Alerts, *alert)

		if e.emitter != nil {
			if err := e.emitter.EmitAlertCreated(ctx, alert); err != nil {
				// event delivery is best-effort; the alert is already stored
				log.WithError(err).Warn("Failed to emit alert created event")
			}
		}
	}

	log.WithFields(map[string]any{
		"rules_matched":  result.RulesMatched,
		"alerts_created": result.AlertsCreated,
	}).Info("Evaluated analysis record")

	return result, nil
}

func validateRecord(rec models.AnalysisRecord) error {
	if rec.TenantID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
	}
	if rec.ConversationID <= 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "conversation_id is required")
	}
	if rec.Sentiment == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "sentiment is required")
	}
	return nil
}
