package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	signed, err := GenerateJWT("compras@example.com")
	require.NoError(t, err)

	token, err := ValidateJWT(signed)
	require.NoError(t, err)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, "compras@example.com", claims["email"])
	require.Equal(t, "access", claims["type"])
}

func TestRefreshTokenCarriesSession(t *testing.T) {
	signed, err := GenerateRefreshToken("compras@example.com", "session-abc")
	require.NoError(t, err)

	token, err := ValidateJWT(signed)
	require.NoError(t, err)

	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "refresh", claims["type"])
	require.Equal(t, "session-abc", claims["sessionId"])
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3creto")
	require.NoError(t, err)
	require.True(t, ValidatePassword(hash, "s3creto"))
	require.False(t, ValidatePassword(hash, "otro"))
}
