package rbac

import (
	"context"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
)

const actions = "read write create update delete all"

// CreatePermissionInput creates a permission. Code is the stable identifier
// checked by authorization, conventionally resource:action.
type CreatePermissionInput struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Code        string `json:"code"        validate:"required,max=100"`
	Resource    string `json:"resource"    validate:"required,max=50"`
	Action      string `json:"action"      validate:"required,oneof=read write create update delete all"`
	Description string `json:"description"`
}

// UpdatePermissionInput changes the given fields of a permission.
type UpdatePermissionInput struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=100"`
	Code        *string `json:"code"        validate:"omitempty,min=1,max=100"`
	Resource    *string `json:"resource"    validate:"omitempty,min=1,max=50"`
	Action      *string `json:"action"      validate:"omitempty,oneof=read write create update delete all"`
	Description *string `json:"description"`
}

// GetPermission returns the permission.
func (s *Service) GetPermission(ctx context.Context, id uint) (*models.Permission, error) {
	p, err := s.store.FindPermissionByID(ctx, id)

	return p, notFound(err, "Permission")
}

// ListPermissions returns a page of permissions with the number of roles holding each.
func (s *Service) ListPermissions(ctx context.Context, f store.PermissionFilter) ([]store.PermissionWithUsage, int64, error) {
	if f.Action != "" && !models.ValidAction(f.Action) {
		return nil, 0, apperror.Invalidf("action must be one of: %s", actions)
	}

	return s.store.ListPermissions(ctx, f) //nolint:wrapcheck
}

// CreatePermission inserts a permission with a unique code.
func (s *Service) CreatePermission(ctx context.Context, in CreatePermissionInput) (*models.Permission, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	p := &models.Permission{
		Name:        in.Name,
		Code:        in.Code,
		Resource:    in.Resource,
		Action:      in.Action,
		Description: in.Description,
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		taken, err := tx.PermissionCodeTaken(ctx, in.Code, 0)
		if err != nil {
			return err
		}

		if taken {
			return apperror.Conflictf("Permission code already exists")
		}

		return conflictOnDuplicate(tx.CreatePermission(ctx, p), "Permission name already exists")
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return p, nil
}

// UpdatePermission applies in to permission id. A changed code must stay unique.
func (s *Service) UpdatePermission(ctx context.Context, id uint, in UpdatePermissionInput) (*models.Permission, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	var p *models.Permission

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error

		p, err = tx.FindPermissionByID(ctx, id)
		if err != nil {
			return notFound(err, "Permission")
		}

		if in.Code != nil && *in.Code != p.Code {
			taken, err := tx.PermissionCodeTaken(ctx, *in.Code, id)
			if err != nil {
				return err
			}

			if taken {
				return apperror.Conflictf("Permission code already exists")
			}

			p.Code = *in.Code
		}

		if in.Name != nil {
			p.Name = *in.Name
		}

		if in.Resource != nil {
			p.Resource = *in.Resource
		}

		if in.Action != nil {
			p.Action = *in.Action
		}

		if in.Description != nil {
			p.Description = *in.Description
		}

		return conflictOnDuplicate(tx.SavePermission(ctx, p), "Permission name already exists")
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return p, nil
}

// DeletePermission removes a permission no role holds.
func (s *Service) DeletePermission(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error { //nolint:wrapcheck
		if _, err := tx.FindPermissionByID(ctx, id); err != nil {
			return notFound(err, "Permission")
		}

		roles, err := tx.CountRolesWithPermission(ctx, id)
		if err != nil {
			return err
		}

		if roles > 0 {
			return apperror.Conflictf("Cannot delete permission: %d role(s) are using this permission", roles)
		}

		return tx.DeletePermission(ctx, id)
	})
}
