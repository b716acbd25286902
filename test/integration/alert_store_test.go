package integration

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitefinder/sentinela/internal/repositories/alert"
	"github.com/elitefinder/sentinela/pkg/database"
	"github.com/elitefinder/sentinela/pkg/models"
)

// alertsSchema mirrors db/pg/000001_create_alerts.up.sql so the suite can
// run against a bare test database.
const alertsSchema = `
CREATE TABLE IF NOT EXISTS alerts (
    id          BIGSERIAL PRIMARY KEY,
    conversation_id BIGINT NOT NULL,
    tenant_id   TEXT NOT NULL,
    type        TEXT NOT NULL CHECK (type IN ('critical', 'urgent', 'attention', 'positive')),
    category    TEXT NOT NULL CHECK (category IN ('sentiment', 'score', 'keywords', 'time', 'resolution')),
    message     TEXT NOT NULL,
    data        JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    read_at     TIMESTAMPTZ,
    resolved_at TIMESTAMPTZ
)`

// testContext holds shared test context
type testContext struct {
	db       database.DB
	repo     *alert.Repository
	ctx      context.Context
	tenantID string
}

// setupTestContext connects to the test database named by TEST_DB_* env
// vars. Each test gets its own tenant so runs never interfere.
func setupTestContext(t *testing.T) *testContext {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("Database not configured")
	}

	ctx := context.Background()
	logger := ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})

	db, err := database.Connect(ctx, database.ConnectionConfig{
		Host:            host,
		Port:            envOr("TEST_DB_PORT", "5432"),
		UserName:        envOr("TEST_DB_USER_NAME", "postgres"),
		Password:        os.Getenv("TEST_DB_PASSWORD"),
		Name:            envOr("TEST_DB_NAME", "sentinela_test"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, alertsSchema)
	require.NoError(t, err)

	return &testContext{
		db:       db,
		repo:     alert.NewRepository(db, logger),
		ctx:      ctx,
		tenantID: "test-tenant-" + uuid.New().String()[:8],
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (tc *testContext) createAlert(t *testing.T, tenantID string, alertType models.AlertType) *models.Alert {
	score := 45
	created, err := tc.repo.Create(tc.ctx, models.AlertDraft{
		ConversationID: 42,
		TenantID:       tenantID,
		Type:           alertType,
		Category:       models.AlertCategoryScore,
		Message:        fmt.Sprintf("Atendimento #42 com score %d", score),
		Data:           models.AlertData{Score: &score},
	})
	require.NoError(t, err)
	return created
}

func TestMarkResolvedIsIdempotent(t *testing.T) {
	tc := setupTestContext(t)
	scope := models.ScopeTenant(tc.tenantID)

	created := tc.createAlert(t, tc.tenantID, models.AlertTypeUrgent)
	assert.Nil(t, created.ReadAt)
	assert.Nil(t, created.ResolvedAt)

	// Read first, then resolve: resolve must not clobber the original
	// read_at.
	read, err := tc.repo.MarkRead(tc.ctx, scope, created.ID)
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)

	time.Sleep(20 * time.Millisecond)

	resolved, err := tc.repo.MarkResolved(tc.ctx, scope, created.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.ReadAt)
	assert.True(t, resolved.ReadAt.Equal(*read.ReadAt), "resolve must keep the original read_at")

	// A second resolve is a no-op returning the existing state.
	time.Sleep(20 * time.Millisecond)
	again, err := tc.repo.MarkResolved(tc.ctx, scope, created.ID)
	require.NoError(t, err)
	assert.True(t, again.ResolvedAt.Equal(*resolved.ResolvedAt))
	assert.True(t, again.ReadAt.Equal(*resolved.ReadAt))
}

func TestMarkResolvedBackfillsRead(t *testing.T) {
	tc := setupTestContext(t)
	scope := models.ScopeTenant(tc.tenantID)

	created := tc.createAlert(t, tc.tenantID, models.AlertTypeCritical)

	resolved, err := tc.repo.MarkResolved(tc.ctx, scope, created.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.ReadAt, "resolving an unread alert must also mark it read")

	// Marking read afterwards keeps the backfilled stamp.
	read, err := tc.repo.MarkRead(tc.ctx, scope, created.ID)
	require.NoError(t, err)
	assert.True(t, read.ReadAt.Equal(*resolved.ReadAt))
}

func TestListTenantIsolation(t *testing.T) {
	tc := setupTestContext(t)
	otherTenant := "test-tenant-" + uuid.New().String()[:8]

	mine := tc.createAlert(t, tc.tenantID, models.AlertTypeUrgent)
	theirs := tc.createAlert(t, otherTenant, models.AlertTypeCritical)

	alerts, err := tc.repo.List(tc.ctx, models.ScopeTenant(tc.tenantID), models.AlertFilter{})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, mine.ID, alerts[0].ID)
	for _, a := range alerts {
		assert.Equal(t, tc.tenantID, a.TenantID)
	}

	// Lifecycle mutations are scoped the same way: another tenant's id is
	// indistinguishable from a nonexistent one.
	_, err = tc.repo.MarkResolved(tc.ctx, models.ScopeTenant(tc.tenantID), theirs.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))

	// The all-tenants scope sees both.
	all, err := tc.repo.List(tc.ctx, models.ScopeAllTenants(), models.AlertFilter{Limit: 200})
	require.NoError(t, err)
	ids := make(map[int64]bool, len(all))
	for _, a := range all {
		ids[a.ID] = true
	}
	assert.True(t, ids[mine.ID])
	assert.True(t, ids[theirs.ID])
}

func TestListOrdersBySeverityThenRecency(t *testing.T) {
	tc := setupTestContext(t)

	// Insert out of severity order, with distinct created_at stamps.
	tc.createAlert(t, tc.tenantID, models.AlertTypePositive)
	time.Sleep(20 * time.Millisecond)
	tc.createAlert(t, tc.tenantID, models.AlertTypeAttention)
	time.Sleep(20 * time.Millisecond)
	firstCritical := tc.createAlert(t, tc.tenantID, models.AlertTypeCritical)
	time.Sleep(20 * time.Millisecond)
	tc.createAlert(t, tc.tenantID, models.AlertTypeUrgent)
	time.Sleep(20 * time.Millisecond)
	secondCritical := tc.createAlert(t, tc.tenantID, models.AlertTypeCritical)

	alerts, err := tc.repo.List(tc.ctx, models.ScopeTenant(tc.tenantID), models.AlertFilter{})
	require.NoError(t, err)
	require.Len(t, alerts, 5)

	gotTypes := make([]models.AlertType, 0, len(alerts))
	for _, a := range alerts {
		gotTypes = append(gotTypes, a.Type)
	}
	assert.Equal(t, []models.AlertType{
		models.AlertTypeCritical,
		models.AlertTypeCritical,
		models.AlertTypeUrgent,
		models.AlertTypeAttention,
		models.AlertTypePositive,
	}, gotTypes)

	// Within a severity, newest first.
	assert.Equal(t, secondCritical.ID, alerts[0].ID)
	assert.Equal(t, firstCritical.ID, alerts[1].ID)
}

func TestSummaryCounts(t *testing.T) {
	tc := setupTestContext(t)
	scope := models.ScopeTenant(tc.tenantID)

	// 2 active critical, 1 active urgent, 1 resolved positive.
	tc.createAlert(t, tc.tenantID, models.AlertTypeCritical)
	tc.createAlert(t, tc.tenantID, models.AlertTypeCritical)
	urgent := tc.createAlert(t, tc.tenantID, models.AlertTypeUrgent)
	positive := tc.createAlert(t, tc.tenantID, models.AlertTypePositive)
	_, err := tc.repo.MarkResolved(tc.ctx, scope, positive.ID)
	require.NoError(t, err)

	summary, err := tc.repo.Summary(tc.ctx, scope)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalActive)
	assert.Equal(t, 2, summary.Critical)
	assert.Equal(t, 1, summary.Urgent)
	assert.Equal(t, 0, summary.Attention)
	assert.Equal(t, 0, summary.Positive)
	assert.Equal(t, 3, summary.Unread)

	// Reading the urgent alert moves the unread count only.
	_, err = tc.repo.MarkRead(tc.ctx, scope, urgent.ID)
	require.NoError(t, err)

	summary, err = tc.repo.Summary(tc.ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalActive)
	assert.Equal(t, 2, summary.Unread)
}
