package models

import "time"

// Permission actions.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionAll    = "all"
)

// Permission is an atomic capability identified by a unique resource:action code.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique display name.
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	// Code is the unique identifier checked by the authorization guard (e.g., "student:read").
	Code string `gorm:"uniqueIndex;size:100;not null" json:"code"`
	// Resource is the resource this permission applies to (e.g., "student", "room").
	Resource string `gorm:"size:50;not null;index:idx_resource_action" json:"resource"`
	// Action is the action allowed on the resource.
	Action string `gorm:"size:20;not null;index:idx_resource_action" json:"action"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"type:text" json:"description"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}

// ValidAction reports whether a is one of the known actions.
func ValidAction(a string) bool {
	switch a {
	case ActionRead, ActionWrite, ActionCreate, ActionUpdate, ActionDelete, ActionAll:
		return true
	default:
		return false
	}
}
