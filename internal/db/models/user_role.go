package models

import "time"

// UserRole is the join record between users and roles.
// The composite primary key keeps each pair unique.
type UserRole struct {
	UserID    uint `gorm:"primaryKey;column:user_id"`
	RoleID    uint `gorm:"primaryKey;column:role_id;index"`
	CreatedAt time.Time
}

// TableName specifies the database table name for the UserRole model.
func (UserRole) TableName() string {
	return "user_roles"
}
