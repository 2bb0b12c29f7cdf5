package rbac

import (
	"context"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
)

// CreateUserInput creates a staff account.
type CreateUserInput struct {
	Username string        `json:"username" validate:"required,min=3,max=50"`
	Password string        `json:"password" validate:"required,min=6,max=128"`
	Name     string        `json:"name"     validate:"required,max=100"`
	Email    string        `json:"email"    validate:"omitempty,email,max=100"`
	Phone    string        `json:"phone"    validate:"max=20"`
	Status   models.Status `json:"status"   validate:"omitempty,oneof=active inactive"`
	RoleIDs  []uint        `json:"role_ids"`
}

// UpdateUserInput changes the given fields of a user. A present RoleIDs
// replaces the complete role assignment.
type UpdateUserInput struct {
	Username *string        `json:"username" validate:"omitempty,min=3,max=50"`
	Password *string        `json:"password" validate:"omitempty,min=6,max=128"`
	Name     *string        `json:"name"     validate:"omitempty,min=1,max=100"`
	Email    *string        `json:"email"    validate:"omitempty,email,max=100"`
	Phone    *string        `json:"phone"    validate:"omitempty,max=20"`
	Status   *models.Status `json:"status"   validate:"omitempty,oneof=active inactive"`
	RoleIDs  *[]uint        `json:"role_ids"`
}

// GetUser returns the user with roles and permissions.
func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.store.FindUserByID(ctx, id)

	return u, notFound(err, "User")
}

// ListUsers returns a page of users with their roles.
func (s *Service) ListUsers(ctx context.Context, f store.UserFilter) ([]models.User, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, apperror.Invalidf("status must be one of: active inactive")
	}

	return s.store.ListUsers(ctx, f) //nolint:wrapcheck
}

// CreateUser inserts the user and its role assignment atomically.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	hash, err := models.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to hash password")
	}

	status := in.Status
	if status == "" {
		status = models.StatusActive
	}

	u := &models.User{
		Username: in.Username,
		Password: hash,
		Name:     in.Name,
		Role:     models.LegacyRoleStaff,
		Email:    in.Email,
		Phone:    in.Phone,
		Status:   status,
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		taken, err := tx.UsernameTaken(ctx, in.Username, 0)
		if err != nil {
			return err
		}

		if taken {
			return apperror.Conflictf("Username already exists")
		}

		roleIDs, err := resolveRoles(ctx, tx, in.RoleIDs)
		if err != nil {
			return err
		}

		if err := tx.CreateUser(ctx, u); err != nil {
			return conflictOnDuplicate(err, "Username already exists")
		}

		return store.UserHasRole.Add(ctx, tx, u.ID, roleIDs)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return s.GetUser(ctx, u.ID)
}

// UpdateUser applies in to user id.
func (s *Service) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	var hash string

	if in.Password != nil {
		var err error

		if hash, err = models.HashPassword(*in.Password); err != nil {
			return nil, apperror.Wrap(apperror.Internal, err, "failed to hash password")
		}
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		u, err := tx.FindUserByID(ctx, id)
		if err != nil {
			return notFound(err, "User")
		}

		if in.Username != nil && *in.Username != u.Username {
			taken, err := tx.UsernameTaken(ctx, *in.Username, id)
			if err != nil {
				return err
			}

			if taken {
				return apperror.Conflictf("Username already exists")
			}

			u.Username = *in.Username
		}

		if hash != "" {
			u.Password = hash
		}

		if in.Name != nil {
			u.Name = *in.Name
		}

		if in.Email != nil {
			u.Email = *in.Email
		}

		if in.Phone != nil {
			u.Phone = *in.Phone
		}

		if in.Status != nil {
			u.Status = *in.Status
		}

		if err := tx.SaveUser(ctx, u); err != nil {
			return conflictOnDuplicate(err, "Username already exists")
		}

		if in.RoleIDs == nil {
			return nil
		}

		roleIDs, err := resolveRoles(ctx, tx, *in.RoleIDs)
		if err != nil {
			return err
		}

		return store.UserHasRole.Replace(ctx, tx, id, roleIDs)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return s.GetUser(ctx, id)
}

// DeleteUser removes user id and its role links. Actors cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return apperror.Conflictf("Cannot delete yourself")
	}

	return s.store.Transaction(ctx, func(tx *store.Store) error { //nolint:wrapcheck
		if _, err := tx.FindUserByID(ctx, id); err != nil {
			return notFound(err, "User")
		}

		if err := store.UserHasRole.RemoveOwner(ctx, tx, id); err != nil {
			return err
		}

		return tx.DeleteUser(ctx, id)
	})
}

// resolveRoles checks that every id names an existing role.
func resolveRoles(ctx context.Context, tx *store.Store, ids []uint) ([]uint, error) {
	ids = unique(ids)

	roles, err := tx.FindRolesByIDs(ctx, ids)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if len(roles) == len(ids) {
		return ids, nil
	}

	found := make(map[uint]bool, len(roles))
	for i := range roles {
		found[roles[i].ID] = true
	}

	for _, id := range ids {
		if !found[id] {
			return nil, apperror.NotFoundf("Role not found: %d", id)
		}
	}

	return ids, nil
}
