package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTValidator_ValidToken(t *testing.T) {
	validate := NewJWTValidator(testSecret)

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "u-42",
		"email":   "admin@example.com",
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	claims, err := validate(tokenString)

	require.NoError(t, err)
	assert.Equal(t, "u-42", claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTValidator_SubFallback(t *testing.T) {
	validate := NewJWTValidator(testSecret)

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "u-7",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	claims, err := validate(tokenString)

	require.NoError(t, err)
	assert.Equal(t, "u-7", claims.UserID)
}

func TestJWTValidator_WrongSecret(t *testing.T) {
	validate := NewJWTValidator(testSecret)

	tokenString := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": "u-42",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	claims, err := validate(tokenString)

	require.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTValidator_ExpiredToken(t *testing.T) {
	validate := NewJWTValidator(testSecret)

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "u-42",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	claims, err := validate(tokenString)

	require.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTValidator_GarbageToken(t *testing.T) {
	validate := NewJWTValidator(testSecret)

	claims, err := validate("not.a.jwt")

	require.Error(t, err)
	assert.Nil(t, claims)
}
