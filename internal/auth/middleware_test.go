package auth_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store/storetest"
)

func newGuardedApp(guard *auth.Guard) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.SendStatus(fe.Code)
			}

			return c.Status(apperror.KindOf(err).Status()).SendString(apperror.PermissionOf(err))
		},
	})

	app.Get("/students", auth.Authenticated(guard), auth.RequirePermission(guard, auth.PermStudentRead),
		func(c *fiber.Ctx) error {
			id, ok := auth.IdentityFrom(c)
			if !ok {
				return fiber.ErrInternalServerError
			}

			return c.SendString(id.User.Username)
		})
	app.Get("/admin", auth.Authenticated(guard), auth.RequireAdmin(guard), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	return app
}

func TestMiddleware(t *testing.T) {
	s := storetest.New(t)
	tokens := testTokens()
	guard := auth.NewGuard(tokens, auth.NewResolver(s))

	read := storetest.Permission(t, s, auth.PermStudentRead, "student", models.ActionRead)
	staff := storetest.User(t, s, "staff1", storetest.Role(t, s, "staff", read))
	guest := storetest.User(t, s, "guest")

	app := newGuardedApp(guard)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "no token", path: "/students", wantStatus: fiber.StatusUnauthorized},
		{name: "basic auth", path: "/students", header: "Basic abc", wantStatus: fiber.StatusUnauthorized},
		{name: "allowed", path: "/students", header: "Bearer " + accessToken(t, tokens, staff), wantStatus: fiber.StatusOK, wantBody: "staff1"},
		{name: "lowercase scheme", path: "/students", header: "bearer " + accessToken(t, tokens, staff), wantStatus: fiber.StatusOK, wantBody: "staff1"},
		{name: "denied", path: "/students", header: "Bearer " + accessToken(t, tokens, guest), wantStatus: fiber.StatusForbidden, wantBody: auth.PermStudentRead},
		{name: "not admin", path: "/admin", header: "Bearer " + accessToken(t, tokens, staff), wantStatus: fiber.StatusForbidden, wantBody: auth.PermAdminAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}
