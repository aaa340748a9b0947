package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	Configure("test-secret", time.Hour)

	token, exp, err := GenerateToken("user-1", RoleLandlord)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, RoleLandlord, claims.Role)
}

func TestParseToken_Rejects(t *testing.T) {
	Configure("test-secret", time.Hour)
	token, _, err := GenerateToken("user-1", RoleTenant)
	require.NoError(t, err)

	_, err = ParseToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	Configure("other-secret", time.Hour)
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	Configure("test-secret", time.Millisecond)
	expired, _, err := GenerateToken("user-1", RoleTenant)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = ParseToken(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong horse", hash))

	assert.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
	assert.NoError(t, ValidatePassword("long enough"))

	tooLong := strings.Repeat("a", MaxPasswordBytes+1)
	assert.ErrorIs(t, ValidatePassword(tooLong), ErrPasswordTooLong)
	_, err = HashPassword(tooLong)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestPermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleRegie, "candidates:decide"))
	assert.False(t, HasPermission(RoleTenant, "candidates:decide"))
	assert.True(t, CanPerformAction(&Claims{Role: RoleTenant}, "visits:book"))
	assert.False(t, CanPerformAction(nil, "visits:book"))
	assert.Error(t, ValidateRole("admin"))
}
