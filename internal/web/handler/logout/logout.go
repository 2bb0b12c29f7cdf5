// Package logout provides the logout endpoint. Tokens are stateless, so the
// endpoint only records the event; clients discard their token pair.
package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/web/handler"
	"github.com/diveerp/diveerp/internal/web/handler/login"
)

// Service is the logout handler service.
type Service struct {
	handler.Service
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	app.Post(login.Path+"/logout", auth.Authenticated(deps.Guard), s.Logout)

	return nil
}

// Logout acknowledges the logout of the caller.
func (s *Service) Logout(c *fiber.Ctx) error {
	id, err := handler.Identity(c)
	if err != nil {
		return err
	}

	log.Info().Uint("user_id", id.UserID()).Msg("logout")

	return handler.Done(c, "Logout successful", nil)
}
