// Package user provides the user administration endpoints.
package user

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
	// Path is the base path for user management.
	Path = handler.APIPath + "/users"

	// QueryRoleID filters the list by an assigned role.
	QueryRoleID = "role_id"
)

// Service provides CRUD operations for users.
type Service struct {
	handler.Service
	admin *rbac.Service
	local *auth.LocalProvider
}

// Handler is the exported instance.
var Handler = Service{}

type resetPasswordInput struct {
	NewPassword string `json:"new_password"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.admin = deps.Admin
	s.local = deps.Local

	g := deps.Guard

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.Authenticated(g))
		router.Get(handler.RouterRootPath, auth.RequirePermission(g, auth.PermUserRead), s.List)
		router.Get(handler.RouterIDPath, auth.RequirePermission(g, auth.PermUserRead), s.Get)
		router.Post(handler.RouterRootPath, auth.RequirePermission(g, auth.PermUserWrite), s.Create)
		router.Put(handler.RouterIDPath, auth.RequirePermission(g, auth.PermUserWrite), s.Update)
		router.Delete(handler.RouterIDPath, auth.RequirePermission(g, auth.PermUserDelete), s.Delete)
		router.Post(handler.RouterIDPath+"/reset-password",
			auth.RequirePermission(g, auth.PermUserWrite),
			s.ResetPassword,
		)
	})

	return nil
}

// List shows users with pagination, search and filters.
func (s *Service) List(c *fiber.Ctx) error {
	roleID, err := handler.QueryID(c, QueryRoleID)
	if err != nil {
		return err
	}

	f := store.UserFilter{
		Page:   handler.PageQuery(c),
		Search: c.Query(handler.QuerySearch),
		Status: models.Status(c.Query(handler.QueryStatus)),
	}

	if roleID != nil {
		f.RoleID = *roleID
	}

	users, total, err := s.admin.ListUsers(c.UserContext(), f)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Paged(c, users, total, f.Page)
}

// Get returns one user with roles.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	u, err := s.admin.GetUser(c.UserContext(), id)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.OK(c, u)
}

// Create adds a user.
func (s *Service) Create(c *fiber.Ctx) error {
	in := new(rbac.CreateUserInput)
	if err := handler.Bind(c, in); err != nil {
		return err
	}

	u, err := s.admin.CreateUser(c.UserContext(), *in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Uint("user_id", u.ID).Str("username", u.Username).Msg("user created")

	return handler.Created(c, "User created successfully", u)
}

// Update changes a user.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	in := new(rbac.UpdateUserInput)
	if err := handler.Bind(c, in); err != nil {
		return err
	}

	u, err := s.admin.UpdateUser(c.UserContext(), id, *in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Done(c, "User updated successfully", u)
}

// Delete removes a user other than the caller.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	caller, err := handler.Identity(c)
	if err != nil {
		return err
	}

	if err := s.admin.DeleteUser(c.UserContext(), caller.UserID(), id); err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Uint("user_id", id).Uint("by", caller.UserID()).Msg("user deleted")

	return handler.Done(c, "User deleted successfully", nil)
}

// ResetPassword sets a new password without knowing the old one.
func (s *Service) ResetPassword(c *fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	in := new(resetPasswordInput)
	if err := handler.Bind(c, in); err != nil {
		return err
	}

	if err := s.local.ResetPassword(c.UserContext(), id, in.NewPassword); err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Done(c, "Password reset successfully", nil)
}
