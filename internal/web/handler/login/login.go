// Package login provides the JSON authentication endpoints: login, current
// user, password change and token refresh.
package login

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/web/handler"
)

const (
	// Path is the base path of the authentication endpoints.
	Path = handler.APIPath + "/auth"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	guard *auth.Guard
	local *auth.LocalProvider
}

// Handler is the login handler.
var Handler = Service{}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type refreshInput struct {
	RefreshToken string `json:"refreshToken"`
}

// legacyUser is the user object older clients read from the login reply.
type legacyUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

type loginReply struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	Expires      time.Time  `json:"expires"`
	Username     string     `json:"username"`
	Nickname     string     `json:"nickname"`
	Roles        []string   `json:"roles"`
	Permissions  []string   `json:"permissions"`
	Avatar       string     `json:"avatar"`
	Token        string     `json:"token"`
	User         legacyUser `json:"user"`
}

type meReply struct {
	*models.User
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

type refreshReply struct {
	AccessToken string    `json:"accessToken"`
	Expires     time.Time `json:"expires"`
}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.guard = deps.Guard
	s.local = deps.Local

	app.Route(Path, func(router fiber.Router) {
		router.Post("/login", s.Login)
		router.Post("/refresh", s.Refresh)
		router.Get("/me", auth.Authenticated(s.guard), s.Me)
		router.Post("/change-password", auth.Authenticated(s.guard), s.ChangePassword)
	})

	return nil
}

// Login verifies the credentials of an active user and issues a token pair.
func (s *Service) Login(c *fiber.Ctx) error {
	in := new(loginInput)
	if err := handler.Bind(c, in); err != nil {
		return err
	}

	if in.Username == "" || in.Password == "" {
		return apperror.Invalidf("Username and password are required")
	}

	u, err := s.local.Authenticate(c.UserContext(), in.Username, in.Password)
	if err != nil {
		log.Info().Str("username", in.Username).Str("ip", c.IP()).Msg("login failed")

		return err //nolint:wrapcheck
	}

	perms := auth.CollectPermissions(u)

	pair, err := s.guard.Tokens().IssuePair(u)
	if err != nil {
		return apperror.Wrap(apperror.Internal, err, "failed to issue tokens")
	}

	log.Info().Uint("user_id", u.ID).Str("username", u.Username).Msg("login successful")

	return handler.Done(c, "Login successful", loginReply{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Expires:      pair.Expires,
		Username:     u.Username,
		Nickname:     u.Name,
		Roles:        u.RoleNames(),
		Permissions:  perms.Codes(),
		Token:        pair.AccessToken,
		User: legacyUser{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.Name,
			Role:     u.Role,
			Email:    u.Email,
		},
	})
}

// Me returns the caller with role names and permission codes.
func (s *Service) Me(c *fiber.Ctx) error {
	id, err := handler.Identity(c)
	if err != nil {
		return err
	}

	return handler.OK(c, meReply{
		User:        id.User,
		Roles:       id.User.RoleNames(),
		Permissions: id.Permissions.Codes(),
	})
}

// ChangePassword replaces the caller's password after verifying the old one.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	id, err := handler.Identity(c)
	if err != nil {
		return err
	}

	in := new(changePasswordInput)
	if err := handler.Bind(c, in); err != nil {
		return err
	}

	if err := s.local.ChangePassword(c.UserContext(), id.UserID(), in.OldPassword, in.NewPassword); err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Done(c, "Password changed successfully", nil)
}

// Refresh exchanges a refresh token for a new access token.
func (s *Service) Refresh(c *fiber.Ctx) error {
	in := new(refreshInput)
	if err := handler.Bind(c, in); err != nil {
		return err
	}

	id, err := s.guard.Refresh(c.UserContext(), in.RefreshToken)
	if err != nil {
		return err //nolint:wrapcheck
	}

	raw, expires, err := s.guard.Tokens().Issue(id.User, auth.TokenAccess)
	if err != nil {
		return apperror.Wrap(apperror.Internal, err, "failed to issue token")
	}

	return handler.OK(c, refreshReply{AccessToken: raw, Expires: expires})
}
