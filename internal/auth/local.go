package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
)

// CredentialStore is the storage needed by LocalProvider.
type CredentialStore interface {
	UserFinder
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
}

// LocalProvider handles username and password authentication against the local database.
type LocalProvider struct {
	store CredentialStore
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(s CredentialStore) *LocalProvider {
	return &LocalProvider{store: s}
}

// Authenticate returns the active user matching username and password.
// Unknown users, inactive users and wrong passwords share one error.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	invalid := apperror.Wrap(apperror.Authentication, ErrInvalidCredentials, "Invalid username or password")

	user, err := p.store.FindUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalid
	}

	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if !user.IsActive() || !user.VerifyPassword(password) {
		return nil, invalid
	}

	return user, nil
}

// ChangePassword replaces the password of userID after verifying the old one.
func (p *LocalProvider) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if newPassword == "" {
		return apperror.Invalidf("New password is required")
	}

	user, err := p.store.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFoundf("User not found")
	}

	if err != nil {
		return err //nolint:wrapcheck
	}

	if !user.VerifyPassword(oldPassword) {
		return apperror.Wrap(apperror.Validation, ErrInvalidOldPassword, "Old password is incorrect")
	}

	return p.setPassword(ctx, user, newPassword)
}

// ResetPassword sets the password of userID without verification (admin function).
func (p *LocalProvider) ResetPassword(ctx context.Context, userID uint, newPassword string) error {
	if newPassword == "" {
		return apperror.Invalidf("New password is required")
	}

	user, err := p.store.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFoundf("User not found")
	}

	if err != nil {
		return err //nolint:wrapcheck
	}

	return p.setPassword(ctx, user, newPassword)
}

func (p *LocalProvider) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := models.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = hash

	return p.store.SaveUser(ctx, user) //nolint:wrapcheck
}
