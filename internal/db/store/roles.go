package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/diveerp/diveerp/internal/db/models"
)

// RoleFilter narrows ListRoles.
type RoleFilter struct {
	Page   Page
	Search string // name or name_cn
	Status models.Status
}

// FindRoleByID returns the role with its permissions.
func (s *Store) FindRoleByID(ctx context.Context, id uint) (*models.Role, error) {
	roles, err := s.FindRolesByIDs(ctx, []uint{id})
	if err != nil {
		return nil, err
	}

	if len(roles) == 0 {
		return nil, ErrNotFound
	}

	return &roles[0], nil
}

// FindRolesByIDs returns the existing roles among ids, ordered by id, with permissions.
func (s *Store) FindRolesByIDs(ctx context.Context, ids []uint) ([]models.Role, error) {
	var roles []models.Role

	if len(ids) == 0 {
		return roles, nil
	}

	if err := s.call(ctx, func(db *gorm.DB) error {
		return db.Where("id IN ?", ids).Order("id").Find(&roles).Error
	}); err != nil {
		return nil, err
	}

	if err := s.attachPermissions(ctx, roles); err != nil {
		return nil, err
	}

	return roles, nil
}

// RoleNameTaken reports whether another role than exceptID uses name.
func (s *Store) RoleNameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var count int64

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Model(&models.Role{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error
	})

	return count > 0, err
}

// ListRoles returns one page of roles with permissions and the total match count.
func (s *Store) ListRoles(ctx context.Context, f RoleFilter) ([]models.Role, int64, error) {
	var (
		roles []models.Role
		total int64
		page  = f.Page.Normalize()
	)

	err := s.call(ctx, func(db *gorm.DB) error {
		q := search(db.Model(&models.Role{}), f.Search, "name", "name_cn")
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}

		q = q.Session(&gorm.Session{})

		if err := q.Count(&total).Error; err != nil {
			return err
		}

		return page.apply(q).Order("id").Find(&roles).Error
	})
	if err != nil {
		return nil, 0, err
	}

	if err := s.attachPermissions(ctx, roles); err != nil {
		return nil, 0, err
	}

	return roles, total, nil
}

// CreateRole inserts r.
func (s *Store) CreateRole(ctx context.Context, r *models.Role) error {
	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Create(r).Error
	})
}

// SaveRole writes all columns of r.
func (s *Store) SaveRole(ctx context.Context, r *models.Role) error {
	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Save(r).Error
	})
}

// BumpRoleVersion increments the version of role id if it still equals version.
// It reports false when another writer got there first.
func (s *Store) BumpRoleVersion(ctx context.Context, id, version uint) (bool, error) {
	var affected int64

	err := s.mutate(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.Role{}).
			Where("id = ? AND version = ?", id, version).
			Update("version", gorm.Expr("version + 1"))
		affected = res.RowsAffected

		return res.Error
	})

	return affected == 1, err
}

// DeleteRole removes the role row. Links are removed by the caller.
func (s *Store) DeleteRole(ctx context.Context, id uint) error {
	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Delete(&models.Role{}, id).Error
	})
}

func (s *Store) attachPermissions(ctx context.Context, roles []models.Role) error {
	ids := make([]uint, 0, len(roles))
	for i := range roles {
		ids = append(ids, roles[i].ID)
	}

	index, err := RoleHasPermission.memberIndex(ctx, s, ids)
	if err != nil {
		return err
	}

	perms, err := s.FindPermissionsByIDs(ctx, flatten(index))
	if err != nil {
		return err
	}

	byID := make(map[uint]models.Permission, len(perms))
	for _, p := range perms {
		byID[p.ID] = p
	}

	for i := range roles {
		roles[i].Permissions = make([]models.Permission, 0, len(index[roles[i].ID]))

		for _, permID := range index[roles[i].ID] {
			if p, ok := byID[permID]; ok {
				roles[i].Permissions = append(roles[i].Permissions, p)
			}
		}
	}

	return nil
}

// FindRoleByName returns the role with its permissions.
func (s *Store) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role

	if err := s.call(ctx, func(db *gorm.DB) error {
		return db.Where("name = ?", name).First(&role).Error
	}); err != nil {
		return nil, err
	}

	roles := []models.Role{role}
	if err := s.attachPermissions(ctx, roles); err != nil {
		return nil, err
	}

	return &roles[0], nil
}
