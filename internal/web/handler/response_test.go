package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/web/handler"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantPerm   string
	}{
		{
			name:       "canceled request",
			err:        apperror.Wrap(apperror.Unavailable, context.Canceled, "request canceled"),
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "request canceled",
		},
		{
			name:       "forbidden",
			err:        apperror.Forbidden("boat:write"),
			wantStatus: http.StatusForbidden,
			wantMsg:    "Permission denied: boat:write",
			wantPerm:   "boat:write",
		},
		{
			name:       "internal is masked",
			err:        errors.New("db password leaked"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    http.StatusText(http.StatusInternalServerError),
		},
		{
			name:       "fiber error",
			err:        fiber.ErrMethodNotAllowed,
			wantStatus: http.StatusMethodNotAllowed,
			wantMsg:    fiber.ErrMethodNotAllowed.Message,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
			app.Get("/", func(*fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)

			defer resp.Body.Close()

			var out handler.Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.False(t, out.Success)
			assert.Equal(t, tt.wantMsg, out.Message)
			assert.Equal(t, tt.wantPerm, out.Permission)
		})
	}
}
