package models

// Roles carried by the caller identity. Admin roles see every tenant;
// everything else is pinned to its own tenant inside the store.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Scope is the tenant visibility of a store call. It is a mandatory
// parameter on every store method: cross-tenant leakage is a correctness
// bug, not an authorization nicety.
type Scope struct {
	TenantID   string
	AllTenants bool
}

// ScopeAllTenants is the administrative scope covering every tenant.
func ScopeAllTenants() Scope {
	return Scope{AllTenants: true}
}

// ScopeTenant restricts to a single tenant.
func ScopeTenant(tenantID string) Scope {
	return Scope{TenantID: tenantID}
}

// ScopeForRole maps a caller's role and tenant to their store scope.
func ScopeForRole(role, tenantID string) Scope {
	if role == RoleAdmin || role == RoleSuperAdmin {
		return ScopeAllTenants()
	}
	return ScopeTenant(tenantID)
}
