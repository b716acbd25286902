// Package alerts exposes the alert API: listing, summary, manual creation,
// rule evaluation, and lifecycle transitions.
package alerts

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/elitefinder/sentinela/internal/repositories/alert"
	"github.com/elitefinder/sentinela/pkg/context"
	"github.com/elitefinder/sentinela/pkg/engine"
	"github.com/elitefinder/sentinela/pkg/lifecycle"
	"github.com/elitefinder/sentinela/pkg/models"
)

var validate = validator.New()

// Register registers alert routes
func Register(g *echo.Group) {
	g.GET("", ListAlerts)
	g.GET("/summary", GetSummary)
	g.POST("", CreateAlert)
	g.POST("/evaluate", EvaluateAnalysis)
	g.PATCH("/:id/read", MarkAlertRead)
	g.PATCH("/:id/resolve", ResolveAlert)
}

func callerScope(c echo.Context) (models.Scope, error) {
	ctx := c.Request().Context()
	role := context.GetUserRole(ctx)
	tenantID := context.GetTenantID(ctx)

	scope := models.ScopeForRole(role, tenantID)
	if !scope.AllTenants && scope.TenantID == "" {
		return models.Scope{}, httperror.NewHTTPError(http.StatusBadRequest, "X-Tenant-ID header is required")
	}
	return scope, nil
}

func alertID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, httperror.NewHTTPError(http.StatusBadRequest, "invalid alert id")
	}
	return id, nil
}

// ListAlertsResponse is the list endpoint envelope
type ListAlertsResponse struct {
	Alerts []models.Alert `json:"alerts"`
	Total  int            `json:"total"`
}

// ListAlerts lists alerts visible to the caller, most severe first. Query
// parameters: type, resolved, limit.
func ListAlerts(c echo.Context) error {
	ctx := c.Request().Context()

	scope, err := callerScope(c)
	if err != nil {
		return err
	}

	var filter models.AlertFilter
	if t := c.QueryParam("type"); t != "" {
		alertType := models.AlertType(t)
		if !alertType.Valid() {
			return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid alert type %q", t)
		}
		filter.Type = &alertType
	}
	if v := c.QueryParam("resolved"); v != "" {
		filter.IncludeResolved = v == "true"
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return httperror.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		filter.Limit = limit
	}

	ctx, repo, err := ectoinject.GetContext[*alert.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	alerts, err := repo.List(ctx, scope, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ListAlertsResponse{Alerts: alerts, Total: len(alerts)})
}

// GetSummary returns the dashboard badge counts for the caller's scope.
func GetSummary(c echo.Context) error {
	ctx := c.Request().Context()

	scope, err := callerScope(c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*alert.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	summary, err := repo.Summary(ctx, scope)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}

// CreateAlertRequest is the request body for manually creating an alert
type CreateAlertRequest struct {
	ConversationID int64                `json:"conversation_id" validate:"required,min=1"`
	Type           models.AlertType     `json:"type" validate:"required"`
	Category       models.AlertCategory `json:"category" validate:"required"`
	Message        string               `json:"message" validate:"required"`
	Data           models.AlertData     `json:"data"`
}

// CreateAlert creates an alert outside the rule engine, for operator use.
func CreateAlert(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "X-Tenant-ID header is required")
	}

	var req CreateAlertRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !req.Type.Valid() {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid alert type %q", req.Type)
	}
	if !req.Category.Valid() {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid alert category %q", req.Category)
	}

	ctx, repo, err := ectoinject.GetContext[*alert.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := repo.Create(ctx, models.AlertDraft{
		ConversationID: req.ConversationID,
		TenantID:       tenantID,
		Type:           req.Type,
		Category:       req.Category,
		Message:        req.Message,
		Data:           req.Data,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// EvaluateAnalysisRequest is the request body for evaluating an analysis
// record against the alerting rules.
type EvaluateAnalysisRequest struct {
	ConversationID int64  `json:"conversation_id" validate:"required,min=1"`
	TenantID       string `json:"tenant_id"`
	CustomerName   string `json:"customer_name"`
	Sentiment      string `json:"sentiment" validate:"required"`
	Score          int    `json:"score" validate:"min=0,max=100"`
	MessageText    string `json:"message_text"`
}

// EvaluateAnalysis runs the alerting rules against a finalized analysis
// record. Non-admin callers always evaluate within their own tenant.
func EvaluateAnalysis(c echo.Context) error {
	ctx := c.Request().Context()

	var req EvaluateAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	scope, err := callerScope(c)
	if err != nil {
		return err
	}

	rec := models.AnalysisRecord{
		ConversationID: req.ConversationID,
		TenantID:       req.TenantID,
		CustomerName:   req.CustomerName,
		Sentiment:      req.Sentiment,
		Score:          req.Score,
		MessageText:    req.MessageText,
	}
	if !scope.AllTenants {
		rec.TenantID = scope.TenantID
	}

	ctx, eng, err := ectoinject.GetContext[*engine.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := eng.Evaluate(ctx, rec, "http")
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// MarkAlertRead marks an alert as read. Idempotent.
func MarkAlertRead(c echo.Context) error {
	ctx := c.Request().Context()

	scope, err := callerScope(c)
	if err != nil {
		return err
	}

	id, err := alertID(c)
	if err != nil {
		return err
	}

	ctx, controller, err := ectoinject.GetContext[*lifecycle.Controller](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	updated, err := controller.MarkRead(ctx, scope, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

// ResolveAlert marks an alert as resolved (and read). Idempotent.
func ResolveAlert(c echo.Context) error {
	ctx := c.Request().Context()

	scope, err := callerScope(c)
	if err != nil {
		return err
	}

	id, err := alertID(c)
	if err != nil {
		return err
	}

	ctx, controller, err := ectoinject.GetContext[*lifecycle.Controller](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	updated, err := controller.MarkResolved(ctx, scope, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}
