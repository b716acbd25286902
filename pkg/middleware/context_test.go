package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitefinder/sentinela/pkg/context"
)

func TestContextExtractsCallerHeaders(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
	req.Header.Set(HeaderTenantID, "tenant-1")
	req.Header.Set(HeaderUserID, "user-9")
	req.Header.Set(HeaderUserRole, "admin")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var tenantID, userID, userRole string
	handler := Context()(func(c echo.Context) error {
		ctx := c.Request().Context()
		tenantID = context.GetTenantID(ctx)
		userID = context.GetUserID(ctx)
		userRole = context.GetUserRole(ctx)
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, "tenant-1", tenantID)
	assert.Equal(t, "user-9", userID)
	assert.Equal(t, "admin", userRole)
}

func TestContextGeneratesRequestID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var requestID string
	handler := Context()(func(c echo.Context) error {
		requestID = context.GetRequestID(c.Request().Context())
		return nil
	})

	require.NoError(t, handler(c))
	assert.NotEmpty(t, requestID)
}

func TestContextMissingHeadersAreEmpty(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Context()(func(c echo.Context) error {
		ctx := c.Request().Context()
		assert.Empty(t, context.GetTenantID(ctx))
		assert.Empty(t, context.GetUserRole(ctx))
		return nil
	})

	require.NoError(t, handler(c))
}
