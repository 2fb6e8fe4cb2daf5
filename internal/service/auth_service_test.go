package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeladder/exam-backend/internal/config"
	"github.com/codeladder/exam-backend/internal/service"
)

func signToken(t *testing.T, secret string, claims *service.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	auth := service.NewAuthService(cfg)

	claims := &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TokenType: service.TokenTypeStudent,
		UserID:    42,
	}

	got, err := auth.ValidateToken(signToken(t, "test-secret", claims))
	require.NoError(t, err)
	assert.Equal(t, 42, got.UserID)
	assert.Equal(t, service.TokenTypeStudent, got.TokenType)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	auth := service.NewAuthService(cfg)

	claims := &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		TokenType: service.TokenTypeStudent,
		UserID:    42,
	}

	_, err := auth.ValidateToken(signToken(t, "test-secret", claims))
	require.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	auth := service.NewAuthService(&config.Config{JWTSecret: "real-secret"})

	claims := &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TokenType: service.TokenTypeStudent,
	}

	_, err := auth.ValidateToken(signToken(t, "other-secret", claims))
	require.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestValidateToken_Garbage(t *testing.T) {
	auth := service.NewAuthService(&config.Config{JWTSecret: "test-secret"})
	_, err := auth.ValidateToken("not.a.token")
	require.ErrorIs(t, err, service.ErrTokenInvalid)
}
