package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestJWT(t *testing.T) (*hmacJWTService, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc, err := newJWTService(testSecret, time.Hour, c.Now)
	require.NoError(t, err)
	return svc, c
}

func TestGenerateAndValidate(t *testing.T) {
	t.Parallel()
	svc, c := newTestJWT(t)
	userID := uuid.New()

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, c.now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, c.now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		svc, c := newTestJWT(t)
		token, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)
		c.now = c.now.Add(2 * time.Hour)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("within clock skew", func(t *testing.T) {
		t.Parallel()
		svc, c := newTestJWT(t)
		token, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)
		c.now = c.now.Add(time.Hour + time.Minute)

		_, err = svc.ValidateToken(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestJWT(t)
		other, err := newJWTService("another-secret-that-is-long-enough-too", time.Hour, svc.timeFunc)
		require.NoError(t, err)
		token, err := other.GenerateToken(ctx, userID)
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestJWT(t)
		_, err := svc.ValidateToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		t.Parallel()
		svc, c := newTestJWT(t)
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwtCustomClaims{
			UserID: userID,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(c.now.Add(time.Hour)),
			},
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRevoke(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, c := newTestJWT(t)

	token, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	svc.Revoke(ctx, claims)
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	c.now = c.now.Add(3 * time.Hour)
	svc.Revoke(ctx, nil)
	svc.Revoke(ctx, &Claims{ID: "other", ExpiresAt: c.now.Add(time.Hour)})
	assert.Len(t, svc.revoked, 1, "expired revocations are pruned")
}

func TestNewJWTServiceValidation(t *testing.T) {
	t.Parallel()
	_, err := NewJWTService("short", time.Hour)
	assert.Error(t, err)
	_, err = NewJWTService(testSecret, 0)
	assert.Error(t, err)
}
