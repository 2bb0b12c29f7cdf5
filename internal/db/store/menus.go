package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/diveerp/diveerp/internal/db/models"
)

// FindMenuByID returns the menu.
func (s *Store) FindMenuByID(ctx context.Context, id uint) (*models.Menu, error) {
	var m models.Menu

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.First(&m, id).Error
	})
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// ListMenus returns all menus ordered for display. visibleOnly drops hidden nodes.
func (s *Store) ListMenus(ctx context.Context, visibleOnly bool) ([]models.Menu, error) {
	var menus []models.Menu

	err := s.call(ctx, func(db *gorm.DB) error {
		q := db.Model(&models.Menu{})
		if visibleOnly {
			q = q.Where("visible = ?", true)
		}

		return q.Order("sort_order").Order("id").Find(&menus).Error
	})

	return menus, err
}

// MenuChildren returns the direct children of menu id.
func (s *Store) MenuChildren(ctx context.Context, id uint) ([]models.Menu, error) {
	var menus []models.Menu

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Where("parent_id = ?", id).Order("sort_order").Order("id").Find(&menus).Error
	})

	return menus, err
}

// CountMenuChildren returns the number of direct children of menu id.
func (s *Store) CountMenuChildren(ctx context.Context, id uint) (int64, error) {
	var count int64

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Model(&models.Menu{}).Where("parent_id = ?", id).Count(&count).Error
	})

	return count, err
}

// MenuParents returns the id to parent id mapping of all menus.
func (s *Store) MenuParents(ctx context.Context) (map[uint]*uint, error) {
	var rows []models.Menu

	if err := s.call(ctx, func(db *gorm.DB) error {
		return db.Select("id", "parent_id").Find(&rows).Error
	}); err != nil {
		return nil, err
	}

	parents := make(map[uint]*uint, len(rows))
	for _, r := range rows {
		parents[r.ID] = r.ParentID
	}

	return parents, nil
}

// CreateMenu inserts m.
func (s *Store) CreateMenu(ctx context.Context, m *models.Menu) error {
	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Create(m).Error
	})
}

// SaveMenu writes all columns of m.
func (s *Store) SaveMenu(ctx context.Context, m *models.Menu) error {
	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Save(m).Error
	})
}

// DeleteMenu removes the menu row.
func (s *Store) DeleteMenu(ctx context.Context, id uint) error {
	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Delete(&models.Menu{}, id).Error
	})
}
