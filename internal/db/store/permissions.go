package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/diveerp/diveerp/internal/db/models"
)

// PermissionFilter narrows ListPermissions.
type PermissionFilter struct {
	Page     Page
	Search   string // name, code or resource
	Resource string
	Action   string
}

// PermissionWithUsage is a permission and the number of roles holding it.
type PermissionWithUsage struct {
	models.Permission
	RoleCount int64 `json:"role_count"`
}

// FindPermissionByID returns the permission.
func (s *Store) FindPermissionByID(ctx context.Context, id uint) (*models.Permission, error) {
	var p models.Permission

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.First(&p, id).Error
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// FindPermissionsByIDs returns the existing permissions among ids ordered by id.
func (s *Store) FindPermissionsByIDs(ctx context.Context, ids []uint) ([]models.Permission, error) {
	var perms []models.Permission

	if len(ids) == 0 {
		return perms, nil
	}

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Where("id IN ?", ids).Order("id").Find(&perms).Error
	})

	return perms, err
}

// FindPermissionsByCodes returns the existing permissions among codes ordered by id.
func (s *Store) FindPermissionsByCodes(ctx context.Context, codes []string) ([]models.Permission, error) {
	var perms []models.Permission

	if len(codes) == 0 {
		return perms, nil
	}

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Where("code IN ?", codes).Order("id").Find(&perms).Error
	})

	return perms, err
}

// PermissionCodeTaken reports whether another permission than exceptID uses code.
func (s *Store) PermissionCodeTaken(ctx context.Context, code string, exceptID uint) (bool, error) {
	var count int64

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Model(&models.Permission{}).Where("code = ? AND id <> ?", code, exceptID).Count(&count).Error
	})

	return count > 0, err
}

// ListPermissions returns one page of permissions ordered by resource and
// action, each with its role count, and the total match count.
func (s *Store) ListPermissions(ctx context.Context, f PermissionFilter) ([]PermissionWithUsage, int64, error) {
	var (
		perms []models.Permission
		total int64
		page  = f.Page.Normalize()
	)

	err := s.call(ctx, func(db *gorm.DB) error {
		q := search(db.Model(&models.Permission{}), f.Search, "name", "code", "resource")
		if f.Resource != "" {
			q = q.Where("resource = ?", f.Resource)
		}

		if f.Action != "" {
			q = q.Where("action = ?", f.Action)
		}

		q = q.Session(&gorm.Session{})

		if err := q.Count(&total).Error; err != nil {
			return err
		}

		return page.apply(q).Order("resource").Order("action").Order("id").Find(&perms).Error
	})
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}

	counts, err := RoleHasPermission.OwnerCounts(ctx, s, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]PermissionWithUsage, 0, len(perms))
	for _, p := range perms {
		out = append(out, PermissionWithUsage{Permission: p, RoleCount: counts[p.ID]})
	}

	return out, total, nil
}

// CreatePermission inserts p.
func (s *Store) CreatePermission(ctx context.Context, p *models.Permission) error {
	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Create(p).Error
	})
}

// SavePermission writes all columns of p.
func (s *Store) SavePermission(ctx context.Context, p *models.Permission) error {
	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Save(p).Error
	})
}

// DeletePermission removes the permission row. Links are removed by the caller.
func (s *Store) DeletePermission(ctx context.Context, id uint) error {
	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Delete(&models.Permission{}, id).Error
	})
}

// CountRolesWithPermission returns how many roles hold the permission.
func (s *Store) CountRolesWithPermission(ctx context.Context, permissionID uint) (int64, error) {
	return RoleHasPermission.CountOwners(ctx, s, permissionID)
}
