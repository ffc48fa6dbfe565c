package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorlink/platform/internal/database"
)

func TestPasswordHashing(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	hash, err := m.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, m.CheckPassword("hunter22", hash))
	assert.False(t, m.CheckPassword("wrong", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	user := &database.User{ID: 7, Email: "creator@example.com", Role: "creator"}

	token, expiresAt, err := m.GenerateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "creator@example.com", claims.Email)
	assert.Equal(t, "creator", claims.Role)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	other := NewManager("different-secret", time.Hour)
	user := &database.User{ID: 7, Email: "creator@example.com", Role: "creator"}

	token, _, err := m.GenerateToken(user)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := other.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := m.ParseToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		short := NewManager("test-secret", time.Nanosecond)
		expired, _, err := short.GenerateToken(user)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
		_, err = short.ParseToken(expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
