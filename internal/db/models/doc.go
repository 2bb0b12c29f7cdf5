// Package models contains database model definitions.
//
// Relations between users, roles and permissions are kept in explicit join
// tables (UserRole, RolePermission) and loaded by the store with join queries.
// The Roles and Permissions slices are therefore not gorm associations.
package models

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Role{},
		&Permission{},
		&Menu{},
		&UserRole{},
		&RolePermission{},
	}
}
