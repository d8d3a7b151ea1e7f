package security

import (
	"testing"
	"time"

	"rentmarket-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, 24*time.Hour)

	token, err := tm.GenerateAccessToken(7, "a@b.com", domain.UserRoleAdmin)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(7), claims.UserID)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, domain.Principal{UserID: 7, Role: domain.UserRoleAdmin}, claims.Principal())
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_Refresh(t *testing.T) {
	tm := NewTokenManager("secret", 0, 0)

	token, err := tm.GenerateRefreshToken(3, "a@b.com")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
	assert.Equal(t, domain.UserRoleUser, claims.Principal().Role)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, time.Hour)

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenManager("other", time.Hour, time.Hour)
		token, err := other.GenerateAccessToken(1, "", domain.UserRoleUser)
		require.NoError(t, err)

		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		past := NewTokenManager("secret", time.Minute, time.Minute).(*tokenManager)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.GenerateAccessToken(1, "", domain.UserRoleUser)
		require.NoError(t, err)

		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
