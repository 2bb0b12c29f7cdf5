package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diveerp/diveerp/internal/db/models"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := models.HashPassword("reef-2024")
	require.NoError(t, err)
	assert.NotEqual(t, "reef-2024", hash)

	u := models.User{Password: hash}
	assert.True(t, u.VerifyPassword("reef-2024"))
	assert.False(t, u.VerifyPassword("wrong"))
}

func TestVerifyPasswordBrokenHash(t *testing.T) {
	u := models.User{ID: 3, Password: "not-a-hash"}
	assert.False(t, u.VerifyPassword("anything"))
}

func TestUserHelpers(t *testing.T) {
	u := models.User{
		Status: models.StatusActive,
		Roles:  []models.Role{{Name: "staff"}, {Name: "manager"}},
	}

	assert.True(t, u.IsActive())
	assert.Equal(t, []string{"staff", "manager"}, u.RoleNames())

	u.Status = models.StatusInactive
	assert.False(t, u.IsActive())

	assert.True(t, models.StatusInactive.Valid())
	assert.False(t, models.Status("banned").Valid())
}

func TestMenuRequiredPermission(t *testing.T) {
	code := "student:read"

	assert.Empty(t, (&models.Menu{}).RequiredPermission())
	assert.Equal(t, code, (&models.Menu{Permission: &code}).RequiredPermission())
}
