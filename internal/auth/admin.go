package auth

import "github.com/diveerp/diveerp/internal/db/models"

// AdminCheck decides whether an identity counts as administrator.
type AdminCheck interface {
	IsAdmin(id *Identity) bool
}

// LegacySingleRoleCheck accepts users whose deprecated single role field is "admin".
type LegacySingleRoleCheck struct{}

// IsAdmin implements AdminCheck.
func (LegacySingleRoleCheck) IsAdmin(id *Identity) bool {
	return id.User != nil && id.User.Role == models.LegacyRoleAdmin
}

// RbacPermissionCheck accepts holders of the wildcard or admin:all.
type RbacPermissionCheck struct{}

// IsAdmin implements AdminCheck.
func (RbacPermissionCheck) IsAdmin(id *Identity) bool {
	return id.Permissions.Has(PermWildcard) || id.Permissions.Has(PermAdminAll)
}

// DefaultAdminChecks returns the RBAC check followed by the legacy check.
func DefaultAdminChecks() []AdminCheck {
	return []AdminCheck{RbacPermissionCheck{}, LegacySingleRoleCheck{}}
}

// IsAdministrator reports whether any of checks accepts id.
func IsAdministrator(id *Identity, checks ...AdminCheck) bool {
	if id == nil {
		return false
	}

	for _, c := range checks {
		if c.IsAdmin(id) {
			return true
		}
	}

	return false
}
