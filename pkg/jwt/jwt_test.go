package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", time.Minute)

	token, err := m.GenerateAccessToken(42, "jane@example.org")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "jane@example.org", claims.Email)
	assert.Equal(t, "access", claims.Type)
}

func TestManager_RejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret", time.Minute).GenerateAccessToken(42, "")
	require.NoError(t, err)

	_, err = NewManager("other", time.Minute).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager("secret", time.Minute)
	claims := Claims{
		UserID: 1,
		Type:   "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestManager_RejectsWrongType(t *testing.T) {
	claims := Claims{UserID: 1, Type: "refresh"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewManager("secret", time.Minute).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestManager_RejectsMissingUser(t *testing.T) {
	token, err := NewManager("secret", time.Minute).GenerateAccessToken(0, "")
	require.NoError(t, err)

	_, err = NewManager("secret", time.Minute).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrNoSubject)
}

func TestManager_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{UserID: 1, Type: "access"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewManager("secret", time.Minute).ValidateAccessToken(token)
	assert.Error(t, err)
}
