package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store/storetest"
)

func TestLocalAuthenticate(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	p := auth.NewLocalProvider(s)

	storetest.User(t, s, "staff1")
	off := storetest.User(t, s, "gone")
	off.Status = models.StatusInactive
	require.NoError(t, s.SaveUser(ctx, off))

	u, err := p.Authenticate(ctx, "staff1", "secret")
	require.NoError(t, err)
	assert.Equal(t, "staff1", u.Username)

	for _, tc := range [][2]string{{"staff1", "wrong"}, {"nobody", "secret"}, {"gone", "secret"}} {
		_, err := p.Authenticate(ctx, tc[0], tc[1])
		assert.True(t, apperror.Is(err, apperror.Authentication))
		assert.Equal(t, "Invalid username or password", apperror.MessageOf(err))
	}
}

func TestChangePassword(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	p := auth.NewLocalProvider(s)
	u := storetest.User(t, s, "staff1")

	err := p.ChangePassword(ctx, u.ID, "wrong", "new-secret")
	assert.True(t, apperror.Is(err, apperror.Validation))
	assert.ErrorIs(t, err, auth.ErrInvalidOldPassword)

	require.NoError(t, p.ChangePassword(ctx, u.ID, "secret", "new-secret"))

	_, err = p.Authenticate(ctx, "staff1", "new-secret")
	assert.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	p := auth.NewLocalProvider(s)
	u := storetest.User(t, s, "staff1")

	assert.True(t, apperror.Is(p.ResetPassword(ctx, u.ID, ""), apperror.Validation))
	assert.True(t, apperror.Is(p.ResetPassword(ctx, 999, "x"), apperror.NotFound))

	require.NoError(t, p.ResetPassword(ctx, u.ID, "reset-1"))

	_, err := p.Authenticate(ctx, "staff1", "reset-1")
	assert.NoError(t, err)
}
