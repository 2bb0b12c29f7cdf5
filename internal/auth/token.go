package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/diveerp/diveerp/internal/config"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/uniuri"
)

// Token types carried in the typ claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims of the tokens issued by TokenService.
type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"` // deprecated single role field
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is the result of a login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	Expires      time.Time
}

// TokenService signs and verifies HS256 bearer tokens.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a TokenService from the auth config.
func NewTokenService(cfg config.Auth) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
}

// Issue signs a token of the given type for u.
func (s *TokenService) Issue(u *models.User, typ string) (string, time.Time, error) {
	ttl := s.accessTTL
	if typ == TokenRefresh {
		ttl = s.refreshTTL
	}

	now := s.now()
	exp := now.Add(ttl)

	claims := Claims{
		UserID: u.ID,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uniuri.New(),
			Issuer:    s.issuer,
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	if typ == TokenAccess {
		claims.Username = u.Username
		claims.Role = u.Role
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, exp, nil
}

// IssuePair signs an access and a refresh token for u.
func (s *TokenService) IssuePair(u *models.User) (*TokenPair, error) {
	access, exp, err := s.Issue(u, TokenAccess)
	if err != nil {
		return nil, err
	}

	refresh, _, err := s.Issue(u, TokenRefresh)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, Expires: exp}, nil
}

// Parse verifies raw and returns its claims. The token type must equal typ.
func (s *TokenService) Parse(raw, typ string) (*Claims, error) {
	claims := new(Claims)

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	_, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	case claims.Type != typ:
		return nil, ErrWrongTokenType
	case claims.UserID == 0:
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
