package alert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/elitefinder/sentinela/pkg/database"
	"github.com/elitefinder/sentinela/pkg/metrics"
	"github.com/elitefinder/sentinela/pkg/models"
	"github.com/elitefinder/sentinela/pkg/tracing"
)

const alertColumns = "id, conversation_id, tenant_id, type, category, message, data, created_at, read_at, resolved_at"

// DefaultListLimit is applied when a list request does not specify a limit.
const DefaultListLimit = 50

// MaxListLimit caps the number of alerts a single list call can return.
const MaxListLimit = 200

// Repository handles alert persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new alert repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create persists a draft and returns the stored alert with its assigned id
// and created_at. New alerts are always unread and unresolved.
func (r *Repository) Create(ctx context.Context, draft models.AlertDraft) (*models.Alert, error) {
	ctx, span := tracing.StartSpan(ctx, "alert.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":          "Create",
		"tenant_id":       draft.TenantID,
		"conversation_id": draft.ConversationID,
		"type":            draft.Type,
		"category":        draft.Category,
	})

	if !draft.Type.Valid() {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid alert type %q", draft.Type)
	}
	if !draft.Category.Valid() {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid alert category %q", draft.Category)
	}

	sb := database.NewInsertBuilder()
	sb.InsertInto("alerts")
	sb.Cols("conversation_id", "tenant_id", "type", "category", "message", "data", "created_at")
	sb.Values(draft.ConversationID, draft.TenantID, draft.Type, draft.Category, draft.Message, database.NewJSONB(draft.Data), time.Now().UTC())
	sb.Returning(alertColumns)

	query, args := sb.Build()
	var alert models.Alert
	if err := r.db.GetContext(ctx, &alert, query, args...); err != nil {
		log.WithError(err).Error("Failed to create alert")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create alert")
	}

	metrics.AlertsCreatedTotal.With(prometheus.Labels{
		"tenant_id": alert.TenantID,
		"type":      string(alert.Type),
		"category":  string(alert.Category),
	}).Inc()

	log.WithFields(map[string]any{"id": alert.ID}).Info("Created alert")
	return &alert, nil
}

// List retrieves alerts visible in scope, most severe first, newest first
// within a severity. Resolved alerts are excluded unless the filter asks for
// them.
func (r *Repository) List(ctx context.Context, scope models.Scope, filter models.AlertFilter) ([]models.Alert, error) {
	ctx, span := tracing.StartSpan(ctx, "alert.Repository.List")
	defer span.End()

	limit := filter.Limit
	if limit < 1 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(alertColumns)
	sb.From("alerts")

	var where []string
	if !scope.AllTenants {
		where = append(where, sb.Equal("tenant_id", scope.TenantID))
	}
	if filter.Type != nil {
		where = append(where, sb.Equal("type", *filter.Type))
	}
	if !filter.IncludeResolved {
		where = append(where, sb.IsNull("resolved_at"))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}
	sb.OrderBy(
		"CASE type WHEN 'critical' THEN 1 WHEN 'urgent' THEN 2 WHEN 'attention' THEN 3 ELSE 4 END",
		"created_at DESC",
	)
	sb.Limit(limit)

	query, args := sb.Build()
	alerts := []models.Alert{}
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list alerts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list alerts")
	}

	return alerts, nil
}

// Get retrieves a single alert by id within scope.
func (r *Repository) Get(ctx context.Context, scope models.Scope, id int64) (*models.Alert, error) {
	ctx, span := tracing.StartSpan(ctx, "alert.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(alertColumns)
	sb.From("alerts")
	where := []string{sb.Equal("id", id)}
	if !scope.AllTenants {
		where = append(where, sb.Equal("tenant_id", scope.TenantID))
	}
	sb.Where(where...)

	query, args := sb.Build()
	var alert models.Alert
	if err := r.db.GetContext(ctx, &alert, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("alert %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get alert")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get alert")
	}

	return &alert, nil
}

// Summary computes the dashboard badge counts over the alerts in scope in a
// single aggregate query.
func (r *Repository) Summary(ctx context.Context, scope models.Scope) (*models.AlertSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "alert.Repository.Summary")
	defer span.End()

	timer := prometheus.NewTimer(metrics.SummaryDuration)
	defer timer.ObserveDuration()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"COUNT(*) FILTER (WHERE resolved_at IS NULL) AS total_active",
		"COUNT(*) FILTER (WHERE resolved_at IS NULL AND type = 'critical') AS critical",
		"COUNT(*) FILTER (WHERE resolved_at IS NULL AND type = 'urgent') AS urgent",
		"COUNT(*) FILTER (WHERE resolved_at IS NULL AND type = 'attention') AS attention",
		"COUNT(*) FILTER (WHERE resolved_at IS NULL AND type = 'positive') AS positive",
		"COUNT(*) FILTER (WHERE resolved_at IS NULL AND read_at IS NULL) AS unread",
	)
	sb.From("alerts")
	if !scope.AllTenants {
		sb.Where(sb.Equal("tenant_id", scope.TenantID))
	}

	query, args := sb.Build()
	var summary models.AlertSummary
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to summarize alerts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to summarize alerts")
	}

	return &summary, nil
}

// MarkRead stamps read_at on the alert if not already set. The stamp is
// write-once: marking an already read alert returns it unchanged.
func (r *Repository) MarkRead(ctx context.Context, scope models.Scope, id int64) (*models.Alert, error) {
	ctx, span := tracing.StartSpan(ctx, "alert.Repository.MarkRead")
	defer span.End()

	now := time.Now().UTC()
	sb := database.NewUpdateBuilder()
	sb.Update("alerts")
	sb.Set(sb.Assign("read_at", sqlbuilder.Raw(fmt.Sprintf("COALESCE(read_at, %s)", sb.Var(now)))))
	where := []string{sb.Equal("id", id)}
	if !scope.AllTenants {
		where = append(where, sb.Equal("tenant_id", scope.TenantID))
	}
	sb.Where(where...)
	sb.Returning(alertColumns)

	query, args := sb.Build()
	var alert models.Alert
	if err := r.db.GetContext(ctx, &alert, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("alert %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to mark alert read")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to mark alert read")
	}

	return &alert, nil
}

// MarkResolved stamps resolved_at on the alert if not already set, and
// backfills read_at so a resolved alert is never unread. Both stamps are
// write-once.
func (r *Repository) MarkResolved(ctx context.Context, scope models.Scope, id int64) (*models.Alert, error) {
	ctx, span := tracing.StartSpan(ctx, "alert.Repository.MarkResolved")
	defer span.End()

	now := time.Now().UTC()
	sb := database.NewUpdateBuilder()
	sb.Update("alerts")
	sb.Set(
		sb.Assign("resolved_at", sqlbuilder.Raw(fmt.Sprintf("COALESCE(resolved_at, %s)", sb.Var(now)))),
		sb.Assign("read_at", sqlbuilder.Raw(fmt.Sprintf("COALESCE(read_at, %s)", sb.Var(now)))),
	)
	where := []string{sb.Equal("id", id)}
	if !scope.AllTenants {
		where = append(where, sb.Equal("tenant_id", scope.TenantID))
	}
	sb.Where(where...)
	sb.Returning(alertColumns)

	query, args := sb.Build()
	var alert models.Alert
	if err := r.db.GetContext(ctx, &alert, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("alert %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to resolve alert")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to resolve alert")
	}

	metrics.AlertsResolvedTotal.With(prometheus.Labels{"tenant_id": alert.TenantID}).Inc()

	return &alert, nil
}
