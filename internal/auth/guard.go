package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/db/models"
)

var (
	authnFailures = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "auth_authentication_failures_total",
		Help: "Number of rejected credentials, differentiated by reason.",
	}, []string{"reason"})

	authzDecisions = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "auth_authorization_decisions_total",
		Help: "Number of permission checks, differentiated by result.",
	}, []string{"result"})
)

// Identity is a verified caller and its resolved permissions.
type Identity struct {
	User        *models.User
	Permissions PermissionSet
}

// UserID returns the id of the caller.
func (i *Identity) UserID() uint {
	return i.User.ID
}

// Guard authenticates bearer tokens and authorizes permission codes.
type Guard struct {
	tokens      *TokenService
	resolver    PermissionResolver
	adminChecks []AdminCheck
}

// NewGuard creates a Guard. Without checks the DefaultAdminChecks are used.
func NewGuard(tokens *TokenService, resolver PermissionResolver, checks ...AdminCheck) *Guard {
	if len(checks) == 0 {
		checks = DefaultAdminChecks()
	}

	return &Guard{tokens: tokens, resolver: resolver, adminChecks: checks}
}

// Tokens returns the token service of the guard.
func (g *Guard) Tokens() *TokenService {
	return g.tokens
}

// Authenticate verifies raw and resolves the caller.
// Every credential or identity problem is an apperror.Authentication error.
// Storage failures are passed through unchanged.
func (g *Guard) Authenticate(ctx context.Context, raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, g.reject("missing", ErrNoToken, "No authentication token provided")
	}

	claims, err := g.tokens.Parse(raw, TokenAccess)
	switch {
	case errors.Is(err, ErrTokenExpired):
		return nil, g.reject("expired", err, "Authentication token expired")
	case err != nil:
		return nil, g.reject("invalid", err, "Invalid authentication token")
	}

	return g.identify(ctx, claims.UserID)
}

// Refresh verifies a refresh token and resolves its subject.
func (g *Guard) Refresh(ctx context.Context, raw string) (*Identity, error) {
	claims, err := g.tokens.Parse(strings.TrimSpace(raw), TokenRefresh)
	if err != nil {
		return nil, g.reject("refresh", err, "Invalid refresh token")
	}

	return g.identify(ctx, claims.UserID)
}

func (g *Guard) identify(ctx context.Context, userID uint) (*Identity, error) {
	u, perms, err := g.resolver.Resolve(ctx, userID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, g.reject("unknown_user", err, "Invalid authentication token")
	case err != nil:
		return nil, err
	case !u.IsActive():
		return nil, g.reject("inactive_user", ErrUserInactive, "Invalid authentication token")
	}

	return &Identity{User: u, Permissions: perms}, nil
}

func (g *Guard) reject(reason string, err error, msg string) error {
	authnFailures.WithLabelValues(reason).Inc()
	log.Debug().Err(err).Str("reason", reason).Msg("authentication rejected")

	return apperror.Wrap(apperror.Authentication, err, msg)
}

// Authorize allows when the identity holds the wildcard or exactly code.
// A denial is an apperror.Authorization error carrying code.
func (g *Guard) Authorize(id *Identity, code string) error {
	if id == nil {
		return apperror.Unauthenticated("No authentication token provided")
	}

	if id.Permissions.Allows(code) {
		authzDecisions.WithLabelValues("allow").Inc()
		log.Debug().Uint("user_id", id.UserID()).Str("permission", code).Msg("permission granted")

		return nil
	}

	authzDecisions.WithLabelValues("deny").Inc()
	log.Warn().Uint("user_id", id.UserID()).Str("permission", code).Msg("user lacks required permission")

	return apperror.Forbidden(code)
}

// IsAdministrator is the coarse legacy administrator predicate.
func (g *Guard) IsAdministrator(id *Identity) bool {
	return IsAdministrator(id, g.adminChecks...)
}
