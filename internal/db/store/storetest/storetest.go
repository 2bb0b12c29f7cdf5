// Package storetest provides a migrated in-memory store for tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/diveerp/diveerp/internal/db/dsn"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
)

// New returns a store on a fresh in-memory sqlite database with all models migrated.
func New(t *testing.T) *store.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn.MemorySQLite), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	// every connection would open its own in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := store.New(db, 5*time.Second)
	require.NoError(t, s.Migrate(context.Background(), models.All()...))

	return s
}

// Permission creates a permission whose name equals its code.
func Permission(t *testing.T, s *store.Store, code, resource, action string) *models.Permission {
	t.Helper()

	p := &models.Permission{Name: code, Code: code, Resource: resource, Action: action}
	require.NoError(t, s.CreatePermission(context.Background(), p))

	return p
}

// Role creates an active role holding the given permissions.
func Role(t *testing.T, s *store.Store, name string, perms ...*models.Permission) *models.Role {
	t.Helper()

	ctx := context.Background()
	r := &models.Role{Name: name, Status: models.StatusActive}
	require.NoError(t, s.CreateRole(ctx, r))

	ids := make([]uint, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}

	require.NoError(t, store.RoleHasPermission.Replace(ctx, s, r.ID, ids))

	return r
}

// User creates an active user with password "secret" holding the given roles.
func User(t *testing.T, s *store.Store, username string, roles ...*models.Role) *models.User {
	t.Helper()

	ctx := context.Background()

	hash, err := models.HashPassword("secret")
	require.NoError(t, err)

	u := &models.User{
		Username: username,
		Password: hash,
		Name:     username,
		Role:     models.LegacyRoleStaff,
		Status:   models.StatusActive,
	}
	require.NoError(t, s.CreateUser(ctx, u))

	ids := make([]uint, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}

	require.NoError(t, store.UserHasRole.Replace(ctx, s, u.ID, ids))

	return u
}

// Menu creates a menu node under parent (nil for a root).
func Menu(t *testing.T, s *store.Store, name string, parent *models.Menu, permission string) *models.Menu {
	t.Helper()

	m := &models.Menu{Name: name, Path: "/" + name, Visible: true}
	if parent != nil {
		m.ParentID = &parent.ID
	}

	if permission != "" {
		m.Permission = &permission
	}

	require.NoError(t, s.CreateMenu(context.Background(), m))

	return m
}
