package navigation

import (
	"context"
	"errors"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
)

// MenuSource is the storage used by Builder.
type MenuSource interface {
	ListMenus(ctx context.Context, visibleOnly bool) ([]models.Menu, error)
	FindRoleByID(ctx context.Context, id uint) (*models.Role, error)
}

// Builder produces menu trees per request.
type Builder struct {
	menus MenuSource
}

// NewBuilder creates a Builder on menus.
func NewBuilder(menus MenuSource) *Builder {
	return &Builder{menus: menus}
}

// UserMenuTree returns the visible menus perms may see as trimmed items.
func (b *Builder) UserMenuTree(ctx context.Context, perms auth.PermissionSet) ([]Item, error) {
	menus, err := b.menus.ListMenus(ctx, true)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return NewForest(menus, PermissionFilter(perms.Allows)).Items(), nil
}

// FullMenuTree returns all menus, hidden ones included. With a role id only
// menus the role's permissions allow are kept.
func (b *Builder) FullMenuTree(ctx context.Context, roleID *uint) ([]Node, error) {
	var keep Filter = AllowAll

	if roleID != nil {
		role, err := b.menus.FindRoleByID(ctx, *roleID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFoundf("Role not found")
		}

		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		keep = PermissionFilter(auth.RolePermissions(role).Allows)
	}

	menus, err := b.menus.ListMenus(ctx, false)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return NewForest(menus, keep).Nodes(), nil
}
