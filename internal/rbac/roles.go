package rbac

import (
	"context"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
)

// CreateRoleInput creates a role. Permissions may be given by id, by code or both.
type CreateRoleInput struct {
	Name            string        `json:"name"             validate:"required,max=50"`
	NameCN          string        `json:"name_cn"          validate:"max=50"`
	Description     string        `json:"description"`
	Status          models.Status `json:"status"           validate:"omitempty,oneof=active inactive"`
	PermissionIDs   []uint        `json:"permission_ids"`
	PermissionCodes []string      `json:"permission_codes"`
}

// UpdateRoleInput changes the given fields of a role. Present permission
// lists replace the complete assignment. Version enables optimistic locking.
type UpdateRoleInput struct {
	Name            *string        `json:"name"             validate:"omitempty,min=1,max=50"`
	NameCN          *string        `json:"name_cn"          validate:"omitempty,max=50"`
	Description     *string        `json:"description"`
	Status          *models.Status `json:"status"           validate:"omitempty,oneof=active inactive"`
	PermissionIDs   *[]uint        `json:"permission_ids"`
	PermissionCodes *[]string      `json:"permission_codes"`
	Version         *uint          `json:"version"`
}

func (in *UpdateRoleInput) replacesPermissions() bool {
	return in.PermissionIDs != nil || in.PermissionCodes != nil
}

// GetRole returns the role with its permissions.
func (s *Service) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	role, err := s.store.FindRoleByID(ctx, id)

	return role, notFound(err, "Role")
}

// ListRoles returns a page of roles with permissions.
func (s *Service) ListRoles(ctx context.Context, f store.RoleFilter) ([]models.Role, int64, error) {
	return s.store.ListRoles(ctx, f) //nolint:wrapcheck
}

// CreateRole inserts the role and its permission assignment atomically.
func (s *Service) CreateRole(ctx context.Context, in CreateRoleInput) (*models.Role, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.StatusActive
	}

	role := &models.Role{
		Name:        in.Name,
		NameCN:      in.NameCN,
		Description: in.Description,
		Status:      status,
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		taken, err := tx.RoleNameTaken(ctx, in.Name, 0)
		if err != nil {
			return err
		}

		if taken {
			return apperror.Conflictf("Role name already exists")
		}

		ids, err := resolvePermissions(ctx, tx, in.PermissionIDs, in.PermissionCodes)
		if err != nil {
			return err
		}

		if err := tx.CreateRole(ctx, role); err != nil {
			return conflictOnDuplicate(err, "Role name already exists")
		}

		return store.RoleHasPermission.Add(ctx, tx, role.ID, ids)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return s.GetRole(ctx, role.ID)
}

// UpdateRole applies in to role id. A stale Version is a conflict, and so is
// a concurrent writer that bumped the version first.
func (s *Service) UpdateRole(ctx context.Context, id uint, in UpdateRoleInput) (*models.Role, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		role, err := tx.FindRoleByID(ctx, id)
		if err != nil {
			return notFound(err, "Role")
		}

		if in.Version != nil && *in.Version != role.Version {
			return apperror.Conflictf("Role was modified concurrently: version %d, expected %d", role.Version, *in.Version)
		}

		bumped, err := tx.BumpRoleVersion(ctx, id, role.Version)
		if err != nil {
			return err
		}

		if !bumped {
			return apperror.Conflictf("Role was modified concurrently")
		}

		role.Version++

		if in.Name != nil && *in.Name != role.Name {
			taken, err := tx.RoleNameTaken(ctx, *in.Name, id)
			if err != nil {
				return err
			}

			if taken {
				return apperror.Conflictf("Role name already exists")
			}

			role.Name = *in.Name
		}

		if in.NameCN != nil {
			role.NameCN = *in.NameCN
		}

		if in.Description != nil {
			role.Description = *in.Description
		}

		if in.Status != nil {
			role.Status = *in.Status
		}

		if err := tx.SaveRole(ctx, role); err != nil {
			return conflictOnDuplicate(err, "Role name already exists")
		}

		if !in.replacesPermissions() {
			return nil
		}

		var (
			ids   []uint
			codes []string
		)

		if in.PermissionIDs != nil {
			ids = *in.PermissionIDs
		}

		if in.PermissionCodes != nil {
			codes = *in.PermissionCodes
		}

		resolved, err := resolvePermissions(ctx, tx, ids, codes)
		if err != nil {
			return err
		}

		return store.RoleHasPermission.Replace(ctx, tx, id, resolved)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return s.GetRole(ctx, id)
}

// DeleteRole removes an unused, non-system role and its permission links.
func (s *Service) DeleteRole(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error { //nolint:wrapcheck
		role, err := tx.FindRoleByID(ctx, id)
		if err != nil {
			return notFound(err, "Role")
		}

		if role.IsSystem {
			return apperror.Conflictf("Cannot delete system role: %s", role.Name)
		}

		users, err := tx.CountUsersWithRole(ctx, id)
		if err != nil {
			return err
		}

		if users > 0 {
			return apperror.Conflictf("Cannot delete role: %d user(s) are using this role", users)
		}

		if err := store.RoleHasPermission.RemoveOwner(ctx, tx, id); err != nil {
			return err
		}

		return tx.DeleteRole(ctx, id)
	})
}

// resolvePermissions returns the ids of the referenced permissions.
// Any unknown id or code is a NotFound error.
func resolvePermissions(ctx context.Context, tx *store.Store, ids []uint, codes []string) ([]uint, error) {
	ids = unique(ids)
	codes = unique(codes)

	byID, err := tx.FindPermissionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	if len(byID) != len(ids) {
		found := make(map[uint]bool, len(byID))
		for _, p := range byID {
			found[p.ID] = true
		}

		for _, id := range ids {
			if !found[id] {
				return nil, apperror.NotFoundf("Permission not found: %d", id)
			}
		}
	}

	byCode, err := tx.FindPermissionsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}

	if len(byCode) != len(codes) {
		found := make(map[string]bool, len(byCode))
		for _, p := range byCode {
			found[p.Code] = true
		}

		for _, c := range codes {
			if !found[c] {
				return nil, apperror.NotFoundf("Permission not found: %s", c)
			}
		}
	}

	out := make([]uint, 0, len(byID)+len(byCode))
	for _, p := range byID {
		out = append(out, p.ID)
	}

	for _, p := range byCode {
		out = append(out, p.ID)
	}

	return unique(out), nil
}
