package models

import "time"

// Role is a named bundle of permissions assignable to users.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique name of the role (e.g., "admin", "staff").
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	// NameCN is the localized display name.
	NameCN string `gorm:"column:name_cn;size:50" json:"name_cn"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"type:text" json:"description"`
	// Status is informational, inactive roles still grant their permissions.
	Status Status `gorm:"type:varchar(20);not null;index" json:"status"`
	// IsSystem indicates a seeded role.
	IsSystem bool `gorm:"not null" json:"is_system"`
	// Version is incremented on every update and used for optimistic locking.
	Version uint `gorm:"not null" json:"version"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`

	// Permissions are loaded by the store through role_permissions.
	Permissions []Permission `gorm:"-" json:"permissions,omitempty"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
