package services

import (
	"context"
	"testing"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	hash, err := f.auth.HashPassword("s3cret")
	require.NoError(t, err)
	user := &models.SystemUser{Name: "Admin", Email: "admin@aidhub.org", Role: "admin", Status: "active", Password: hash}
	require.NoError(t, f.users.Create(ctx, user))

	resp, err := f.auth.Login(ctx, &models.LoginRequest{Email: "admin@aidhub.org", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, 3600, resp.ExpiresIn)

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(f.clock.now))
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.Hex(), claims["sub"])
	assert.Equal(t, "admin", claims["role"])

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.Equal(t, f.clock.t, *stored.LastLogin)

	_, err = f.auth.Login(ctx, &models.LoginRequest{Email: "admin@aidhub.org", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, &models.LoginRequest{Email: "nobody@aidhub.org", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
