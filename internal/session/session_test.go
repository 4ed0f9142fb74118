package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestFromTokenParsesClaims(t *testing.T) {
	raw := signedToken(t, Claims{
		UserID:   42,
		Username: "marie",
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	s, err := FromToken(raw)
	require.NoError(t, err)
	assert.Equal(t, 42, s.UserID)
	assert.Equal(t, "marie", s.Username)
	assert.False(t, s.Expired())
	assert.True(t, s.IsAdmin())
	assert.False(t, s.IsSuperAdmin())
}

func TestExpiredToken(t *testing.T) {
	raw := signedToken(t, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	s, err := FromToken(raw)
	require.NoError(t, err, "parsing must not validate; expiry is checked locally")
	assert.True(t, s.Expired())
}

func TestTokenWithoutExpiryNeverExpires(t *testing.T) {
	s, err := FromToken(signedToken(t, Claims{UserID: 1}))
	require.NoError(t, err)
	assert.False(t, s.Expired())
}

func TestRoles(t *testing.T) {
	s, err := FromToken(signedToken(t, Claims{UserID: 1, Role: "superadmin"}))
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())
	assert.True(t, s.IsSuperAdmin())

	s, err = FromToken(signedToken(t, Claims{UserID: 2}))
	require.NoError(t, err)
	assert.False(t, s.IsAdmin())
}

func TestMalformedToken(t *testing.T) {
	_, err := FromToken("not-a-jwt")
	require.Error(t, err)
}
