package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/backend/internal/testhelpers"
)

const testJWTSecret = "test-secret"

func TestLogin(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewAuthService(db, nil, testJWTSecret)
	ctx := context.Background()

	user := testhelpers.CreateUser(t, db, "ada")

	pair, err := svc.Login(ctx, user.Email, testhelpers.TestPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AuthToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AuthToken, pair.RefreshToken)

	claims, err := svc.ValidateToken(pair.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Role, claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(accessTokenTTL), claims.ExpiresAt, time.Minute)
}

func TestLoginWrongPassword(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewAuthService(db, nil, testJWTSecret)

	user := testhelpers.CreateUser(t, db, "ada")

	_, err := svc.Login(context.Background(), user.Email, "not-the-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewAuthService(db, nil, testJWTSecret)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsRefreshToken(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewAuthService(db, nil, testJWTSecret)

	user := testhelpers.CreateUser(t, db, "ada")
	pair, err := svc.Login(context.Background(), user.Email, testhelpers.TestPassword)
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	issuer := NewAuthService(db, nil, testJWTSecret)
	verifier := NewAuthService(db, nil, "other-secret")

	user := testhelpers.CreateUser(t, db, "ada")
	pair, err := issuer.Login(context.Background(), user.Email, testhelpers.TestPassword)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(pair.AuthToken)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewAuthService(db, nil, testJWTSecret)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
