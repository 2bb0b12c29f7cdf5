package auth

import (
	"slices"

	"github.com/diveerp/diveerp/internal/db/models"
)

// PermissionSet is a de-duplicated set of permission codes.
type PermissionSet map[string]struct{}

// NewPermissionSet returns a set holding codes.
func NewPermissionSet(codes ...string) PermissionSet {
	s := make(PermissionSet, len(codes))
	for _, c := range codes {
		s.Add(c)
	}

	return s
}

// Add inserts code. Empty codes are ignored.
func (s PermissionSet) Add(code string) {
	if code != "" {
		s[code] = struct{}{}
	}
}

// Has reports whether code is literally in the set.
func (s PermissionSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Allows reports whether the set grants code, directly or through the wildcard.
func (s PermissionSet) Allows(code string) bool {
	return s.Has(PermWildcard) || s.Has(code)
}

// Codes returns the codes sorted.
func (s PermissionSet) Codes() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}

	slices.Sort(out)

	return out
}

// Len returns the number of codes.
func (s PermissionSet) Len() int {
	return len(s)
}

// CollectPermissions returns the union of the permission codes of all roles of u.
// Role status is not considered.
func CollectPermissions(u *models.User) PermissionSet {
	s := make(PermissionSet)

	for i := range u.Roles {
		for j := range u.Roles[i].Permissions {
			s.Add(u.Roles[i].Permissions[j].Code)
		}
	}

	return s
}

// RolePermissions returns the permission codes of a single role.
func RolePermissions(r *models.Role) PermissionSet {
	s := make(PermissionSet, len(r.Permissions))
	for i := range r.Permissions {
		s.Add(r.Permissions[i].Code)
	}

	return s
}
