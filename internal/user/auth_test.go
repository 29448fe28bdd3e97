package user

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT(42, "admin", "admin@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestGenerateJWT_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := GenerateJWT(1, "user", "a@b.c")
	assert.Error(t, err)
}

func TestParseJWT_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("Garbage token", func(t *testing.T) {
		_, err := ParseJWT("not-a-token")
		assert.Error(t, err)
	})

	t.Run("Wrong signing key", func(t *testing.T) {
		other := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{UserID: 1})
		signed, err := other.SignedString([]byte("different-secret"))
		require.NoError(t, err)

		_, err = ParseJWT(signed)
		assert.Error(t, err)
	})

	t.Run("Wrong signing method", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, &CustomClaims{UserID: 1})
		signed, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ParseJWT(signed)
		assert.Error(t, err)
	})
}
