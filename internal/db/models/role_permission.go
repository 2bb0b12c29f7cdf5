package models

import "time"

// RolePermission is the join record between roles and permissions.
// The composite primary key keeps each pair unique.
type RolePermission struct {
	RoleID       uint `gorm:"primaryKey;column:role_id"`
	PermissionID uint `gorm:"primaryKey;column:permission_id;index"`
	CreatedAt    time.Time
}

// TableName specifies the database table name for the RolePermission model.
func (RolePermission) TableName() string {
	return "role_permissions"
}
