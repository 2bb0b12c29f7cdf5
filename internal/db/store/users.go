package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/diveerp/diveerp/internal/db/models"
)

// UserFilter narrows ListUsers.
type UserFilter struct {
	Page   Page
	Search string // username, name or email
	Status models.Status
	RoleID uint
}

// FindUserByID returns the user with its roles and their permissions.
func (s *Store) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

// FindUserByUsername returns the user with its roles and their permissions.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *Store) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User

	if err := s.call(ctx, func(db *gorm.DB) error {
		return db.Where(query, arg).First(&user).Error
	}); err != nil {
		return nil, err
	}

	if err := s.attachRoles(ctx, []*models.User{&user}); err != nil {
		return nil, err
	}

	return &user, nil
}

// UsernameTaken reports whether another user than exceptID uses username.
func (s *Store) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	var count int64

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Model(&models.User{}).
			Where("username = ? AND id <> ?", username, exceptID).
			Count(&count).Error
	})

	return count > 0, err
}

// ListUsers returns one page of users with roles and the total match count.
func (s *Store) ListUsers(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
		page  = f.Page.Normalize()
	)

	err := s.call(ctx, func(db *gorm.DB) error {
		q := search(db.Model(&models.User{}), f.Search, "username", "name", "email")
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}

		if f.RoleID != 0 {
			q = q.Where("id IN (?)", db.Model(&models.UserRole{}).Select("user_id").Where("role_id = ?", f.RoleID))
		}

		q = q.Session(&gorm.Session{})

		if err := q.Count(&total).Error; err != nil {
			return err
		}

		return page.apply(q).Order("created_at DESC").Order("id DESC").Find(&users).Error
	})
	if err != nil {
		return nil, 0, err
	}

	ptrs := make([]*models.User, len(users))
	for i := range users {
		ptrs[i] = &users[i]
	}

	if err := s.attachRoles(ctx, ptrs); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// CreateUser inserts u.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Create(u).Error
	})
}

// SaveUser writes all columns of u.
func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Save(u).Error
	})
}

// DeleteUser removes the user row. Role links are removed by the caller.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Delete(&models.User{}, id).Error
	})
}

// CountUsers returns the number of users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Model(&models.User{}).Count(&count).Error
	})

	return count, err
}

// CountUsersWithRole returns how many users hold the role.
func (s *Store) CountUsersWithRole(ctx context.Context, roleID uint) (int64, error) {
	return UserHasRole.CountOwners(ctx, s, roleID)
}

func (s *Store) attachRoles(ctx context.Context, users []*models.User) error {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	index, err := UserHasRole.memberIndex(ctx, s, ids)
	if err != nil {
		return err
	}

	roles, err := s.FindRolesByIDs(ctx, flatten(index))
	if err != nil {
		return err
	}

	byID := make(map[uint]models.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}

	for _, u := range users {
		u.Roles = make([]models.Role, 0, len(index[u.ID]))

		for _, roleID := range index[u.ID] {
			if r, ok := byID[roleID]; ok {
				u.Roles = append(u.Roles, r)
			}
		}
	}

	return nil
}

func flatten(index map[uint][]uint) []uint {
	seen := make(map[uint]struct{})
	out := make([]uint, 0, len(index))

	for _, ids := range index {
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}

	return out
}
