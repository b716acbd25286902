package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeForRole(t *testing.T) {
	assert.True(t, ScopeForRole(RoleAdmin, "tenant-1").AllTenants)
	assert.True(t, ScopeForRole(RoleSuperAdmin, "tenant-1").AllTenants)

	scope := ScopeForRole("agent", "tenant-1")
	assert.False(t, scope.AllTenants)
	assert.Equal(t, "tenant-1", scope.TenantID)

	// Unknown roles get tenant scope, never all-tenants
	scope = ScopeForRole("", "tenant-2")
	assert.False(t, scope.AllTenants)
	assert.Equal(t, "tenant-2", scope.TenantID)
}

func TestSeverityRankOrdering(t *testing.T) {
	assert.Equal(t, 1, AlertTypeCritical.SeverityRank())
	assert.Equal(t, 2, AlertTypeUrgent.SeverityRank())
	assert.Equal(t, 3, AlertTypeAttention.SeverityRank())
	assert.Equal(t, 4, AlertTypePositive.SeverityRank())
}

func TestAlertTypeValid(t *testing.T) {
	assert.True(t, AlertTypeCritical.Valid())
	assert.True(t, AlertTypePositive.Valid())
	assert.False(t, AlertType("warning").Valid())
	assert.False(t, AlertType("").Valid())
}

func TestAlertCategoryValid(t *testing.T) {
	assert.True(t, AlertCategorySentiment.Valid())
	assert.True(t, AlertCategoryResolution.Valid())
	assert.False(t, AlertCategory("spam").Valid())
}
