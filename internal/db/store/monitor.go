package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/diveerp/diveerp/internal/db/models"
)

// Counts are the row totals shown on the monitoring overview.
type Counts struct {
	Users       int64
	ActiveUsers int64
	Roles       int64
	Permissions int64
	Menus       int64
}

// Counts returns the entity totals within one per-call timeout.
func (s *Store) Counts(ctx context.Context) (*Counts, error) {
	var c Counts

	err := s.call(ctx, func(db *gorm.DB) error {
		queries := []struct {
			model any
			dst   *int64
			where string
		}{
			{model: &models.User{}, dst: &c.Users},
			{model: &models.User{}, dst: &c.ActiveUsers, where: "status = ?"},
			{model: &models.Role{}, dst: &c.Roles},
			{model: &models.Permission{}, dst: &c.Permissions},
			{model: &models.Menu{}, dst: &c.Menus},
		}

		for _, q := range queries {
			tx := db.Model(q.model)
			if q.where != "" {
				tx = tx.Where(q.where, models.StatusActive)
			}

			if err := tx.Count(q.dst).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// RecentlyActiveUsers returns active users updated at or after since, most
// recent first, with their roles. At most limit users are returned.
func (s *Store) RecentlyActiveUsers(ctx context.Context, since time.Time, limit int) ([]models.User, error) {
	var users []models.User

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Where("status = ? AND updated_at >= ?", models.StatusActive, since).
			Order("updated_at DESC").
			Order("id DESC").
			Limit(limit).
			Find(&users).Error
	})
	if err != nil {
		return nil, err
	}

	ptrs := make([]*models.User, len(users))
	for i := range users {
		ptrs[i] = &users[i]
	}

	if err := s.attachRoles(ctx, ptrs); err != nil {
		return nil, err
	}

	return users, nil
}
