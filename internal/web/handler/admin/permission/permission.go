// Package permission provides the permission administration endpoints.
package permission

import (
	"github.com/gofiber/fiber/v2"

	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/db/store"
	"github.com/diveerp/diveerp/internal/rbac"
	"github.com/diveerp/diveerp/internal/web/handler"
)

const (
	// Path is the base path for permission management.
	Path = handler.APIPath + "/permissions"
)

// Service provides CRUD operations for permissions.
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
		router.Get(handler.RouterRootPath, auth.RequirePermission(g, auth.PermPermissionRead), s.List)
		router.Get(handler.RouterIDPath, auth.RequirePermission(g, auth.PermPermissionRead), s.Get)
		router.Post(handler.RouterRootPath, auth.RequirePermission(g, auth.PermPermissionWrite), s.Create)
		router.Put(handler.RouterIDPath, auth.RequirePermission(g, auth.PermPermissionWrite), s.Update)
		router.Delete(handler.RouterIDPath, auth.RequirePermission(g, auth.PermPermissionDelete), s.Delete)
	})

	return nil
}

// List returns a page of permissions with usage counts.
func (s *Service) List(c *fiber.Ctx) error {
	f := store.PermissionFilter{
		Page:     handler.PageQuery(c),
		Search:   c.Query(handler.QuerySearch),
		Resource: c.Query("resource"),
		Action:   c.Query("action"),
	}

	perms, total, err := s.admin.ListPermissions(c.UserContext(), f)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Paged(c, perms, total, f.Page)
}

// Get returns one permission.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	p, err := s.admin.GetPermission(c.UserContext(), id)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.OK(c, p)
}

// Create adds a permission.
func (s *Service) Create(c *fiber.Ctx) error {
	in := new(rbac.CreatePermissionInput)
	if err := handler.Bind(c, in); err != nil {
		return err
	}

	p, err := s.admin.CreatePermission(c.UserContext(), *in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Created(c, "Permission created successfully", p)
}

// Update changes a permission.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	in := new(rbac.UpdatePermissionInput)
	if err := handler.Bind(c, in); err != nil {
		return err
	}

	p, err := s.admin.UpdatePermission(c.UserContext(), id, *in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Done(c, "Permission updated successfully", p)
}

// Delete removes a permission no role holds.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	if err := s.admin.DeletePermission(c.UserContext(), id); err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Done(c, "Permission deleted successfully", nil)
}
