// Package role provides the role administration endpoints.
package role

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
	"github.com/diveerp/diveerp/internal/rbac"
	"github.com/diveerp/diveerp/internal/web/handler"
)

const (
	// Path is the base path for role management.
	Path = handler.APIPath + "/roles"
)

// Service provides CRUD operations for roles.
type Service struct {
	handler.Service
	admin *rbac.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.admin = deps.Admin

	g := deps.Guard

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.Authenticated(g))
		router.Get(handler.RouterRootPath, auth.RequirePermission(g, auth.PermRoleRead), s.List)
		router.Get(handler.RouterIDPath, auth.RequirePermission(g, auth.PermRoleRead), s.Get)
		router.Post(handler.RouterRootPath, auth.RequirePermission(g, auth.PermRoleWrite), s.Create)
		router.Put(handler.RouterIDPath, auth.RequirePermission(g, auth.PermRoleWrite), s.Update)
		router.Delete(handler.RouterIDPath, auth.RequirePermission(g, auth.PermRoleDelete), s.Delete)
	})

	return nil
}

// List returns a page of roles with their permissions.
func (s *Service) List(c *fiber.Ctx) error {
	f := store.RoleFilter{
		Page:   handler.PageQuery(c),
		Search: c.Query(handler.QuerySearch),
		Status: models.Status(c.Query(handler.QueryStatus)),
	}

	roles, total, err := s.admin.ListRoles(c.UserContext(), f)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Paged(c, roles, total, f.Page)
}

// Get returns one role with its permissions.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	r, err := s.admin.GetRole(c.UserContext(), id)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.OK(c, r)
}

// Create adds a role with its permissions.
func (s *Service) Create(c *fiber.Ctx) error {
	in := new(rbac.CreateRoleInput)
	if err := handler.Bind(c, in); err != nil {
		return err
	}

	r, err := s.admin.CreateRole(c.UserContext(), *in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Uint("role_id", r.ID).Str("role", r.Name).Int("permissions", len(r.Permissions)).Msg("role created")

	return handler.Created(c, "Role created successfully", r)
}

// Update changes a role. A present permission list replaces the assignment.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	in := new(rbac.UpdateRoleInput)
	if err := handler.Bind(c, in); err != nil {
		return err
	}

	r, err := s.admin.UpdateRole(c.UserContext(), id, *in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Uint("role_id", r.ID).Uint("version", r.Version).Msg("role updated")

	return handler.Done(c, "Role updated successfully", r)
}

// Delete removes a role no user holds.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	if err := s.admin.DeleteRole(c.UserContext(), id); err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Uint("role_id", id).Msg("role deleted")

	return handler.Done(c, "Role deleted successfully", nil)
}
