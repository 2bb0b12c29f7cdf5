package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// Status is the lifecycle state shared by users and roles.
type Status string

const (
	// StatusActive marks an account or role as usable.
	StatusActive Status = "active"
	// StatusInactive marks an account as unable to log in.
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

const (
	// LegacyRoleAdmin is the deprecated single role value of administrators.
	LegacyRoleAdmin = "admin"
	// LegacyRoleStaff is the default deprecated single role value.
	LegacyRoleStaff = "staff"
)

// User represents a staff account of the dive shop backend.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`
	// Username is the unique username for login.
	Username string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255;not null" json:"-"`
	// Name is the display name.
	Name string `gorm:"size:100;not null" json:"name"`
	// Role is the deprecated single role field, kept for older clients.
	// Authorization uses the roles assigned through UserRole.
	Role string `gorm:"size:20;not null" json:"role"`
	// Email is the user's email address.
	Email string `gorm:"size:100" json:"email"`
	// Phone is the user's phone number.
	Phone string `gorm:"size:20" json:"phone"`
	// Status decides whether the user can authenticate.
	Status Status `gorm:"type:varchar(20);not null;index" json:"status"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`

	// Roles are loaded by the store through user_roles.
	Roles []Role `gorm:"-" json:"roles,omitempty"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// IsActive reports whether the user may authenticate.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// RoleNames returns the names of the loaded roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for i := range u.Roles {
		names = append(names, u.Roles[i].Name)
	}

	return names
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams) //nolint:wrapcheck
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Err(err).Uint("user_id", u.ID).Msg("failed to verify password")
		return false
	}

	return match
}
