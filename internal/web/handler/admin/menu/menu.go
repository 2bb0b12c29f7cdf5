// Package menu provides the menu administration endpoints and the
// navigation tree of the caller.
package menu

import (
	"github.com/gofiber/fiber/v2"

	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/rbac"
	"github.com/diveerp/diveerp/internal/web/handler"
	"github.com/diveerp/diveerp/internal/web/navigation"
)

const (
	// Path is the base path for menu management.
	Path = handler.APIPath + "/menus"

	// QueryRoleID restricts the full tree to a role's permissions.
	QueryRoleID = "role_id"
)

// Service provides CRUD operations for menus.
type Service struct {
	handler.Service
	admin *rbac.Service
	menus *navigation.Builder
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.admin = deps.Admin
	s.menus = deps.Menus

	g := deps.Guard

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.Authenticated(g))
		// every authenticated user may read their own navigation
		router.Get("/user-menus", s.UserMenus)
		router.Get(handler.RouterRootPath, auth.RequirePermission(g, auth.PermMenuRead), s.Tree)
		router.Get(handler.RouterIDPath, auth.RequirePermission(g, auth.PermMenuRead), s.Get)
		router.Post(handler.RouterRootPath, auth.RequirePermission(g, auth.PermMenuWrite), s.Create)
		router.Put(handler.RouterIDPath, auth.RequirePermission(g, auth.PermMenuWrite), s.Update)
		router.Delete(handler.RouterIDPath, auth.RequirePermission(g, auth.PermMenuDelete), s.Delete)
	})

	return nil
}

// UserMenus returns the visible tree trimmed to the caller's permissions.
func (s *Service) UserMenus(c *fiber.Ctx) error {
	id, err := handler.Identity(c)
	if err != nil {
		return err
	}

	items, err := s.menus.UserMenuTree(c.UserContext(), id.Permissions)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.OK(c, items)
}

// Tree returns the full tree, optionally filtered by role_id.
func (s *Service) Tree(c *fiber.Ctx) error {
	roleID, err := handler.QueryID(c, QueryRoleID)
	if err != nil {
		return err
	}

	nodes, err := s.menus.FullMenuTree(c.UserContext(), roleID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.OK(c, nodes)
}

// Get returns one menu with parent, children and breadcrumbs.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	m, err := s.admin.GetMenu(c.UserContext(), id)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.OK(c, m)
}

// Create adds a menu.
func (s *Service) Create(c *fiber.Ctx) error {
	in := new(rbac.CreateMenuInput)
	if err := handler.Bind(c, in); err != nil {
		return err
	}

	m, err := s.admin.CreateMenu(c.UserContext(), *in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Created(c, "Menu created successfully", m)
}

// Update changes a menu.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	in := new(rbac.UpdateMenuInput)
	if err := handler.Bind(c, in); err != nil {
		return err
	}

	m, err := s.admin.UpdateMenu(c.UserContext(), id, *in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Done(c, "Menu updated successfully", m)
}

// Delete removes a menu without children.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	if err := s.admin.DeleteMenu(c.UserContext(), id); err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Done(c, "Menu deleted successfully", nil)
}
