package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/diveerp/diveerp/internal/apperror"
	accesslog "github.com/diveerp/diveerp/internal/logger/adapter/fiber"
)

// LocalsIdentity is the fiber.Locals key of the authenticated *Identity.
const LocalsIdentity = "identity"

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)

	const prefix = "bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(h[len(prefix):])
}

// Authenticated creates Fiber middleware running the identity stage of the guard.
// The identity is stored in fiber.Locals for the following handlers.
func Authenticated(g *Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := g.Authenticate(c.UserContext(), BearerToken(c))
		if err != nil {
			return err
		}

		c.Locals(LocalsIdentity, id)
		c.Locals(accesslog.LocalsUserID, id.UserID())

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific permission.
// It must run after Authenticated.
func RequirePermission(g *Guard, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := IdentityFrom(c)
		if err := g.Authorize(id, permission); err != nil {
			return err
		}

		return c.Next()
	}
}

// RequireAdmin creates Fiber middleware accepting only administrators
// according to the legacy administrator predicate.
func RequireAdmin(g *Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return apperror.Unauthenticated("No authentication token provided")
		}

		if !g.IsAdministrator(id) {
			return apperror.Forbidden(PermAdminAll)
		}

		return c.Next()
	}
}

// IdentityFrom returns the identity stored by Authenticated.
func IdentityFrom(c *fiber.Ctx) (*Identity, bool) {
	id, ok := c.Locals(LocalsIdentity).(*Identity)

	return id, ok && id != nil
}
