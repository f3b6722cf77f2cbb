package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/candidate-tracker/internal/config"
	"github.com/jonathan/candidate-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	return NewJWTService(&config.JWTConfig{
		Secret:          testSecret,
		Issuer:          config.DefaultIssuer,
		ExpirationHours: expirationHours,
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token, err := service.GenerateToken(types.TokenRequest{Subject: "alice", Role: types.RoleRecruiter})
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3, "JWT should have 3 parts separated by dots")

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.OperatorName())
	assert.False(t, claims.IsAdmin())
	assert.Equal(t, config.DefaultIssuer, claims.Issuer)
}

func TestJWTService_Admin(t *testing.T) {
	service := setupTestJWTService(t, 1)
	token, err := service.GenerateToken(types.TokenRequest{Subject: "root", Role: types.RoleAdmin})
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestJWTService_GenerateToken_InvalidRequest(t *testing.T) {
	service := setupTestJWTService(t, 1)
	_, err := service.GenerateToken(types.TokenRequest{Subject: "", Role: types.RoleAdmin})
	assert.Error(t, err)
	_, err = service.GenerateToken(types.TokenRequest{Subject: "bob", Role: "owner"})
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := setupTestJWTService(t, 1)
	issued := time.Now().Add(-2 * time.Hour)
	service.now = func() time.Time { return issued }
	token, err := service.GenerateToken(types.TokenRequest{Subject: "alice", Role: types.RoleRecruiter})
	require.NoError(t, err)

	service.now = time.Now
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	token, err := setupTestJWTService(t, 1).GenerateToken(types.TokenRequest{Subject: "alice", Role: types.RoleRecruiter})
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "another-secret-key-of-sufficient-length", Issuer: config.DefaultIssuer, ExpirationHours: 1})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestJWTService_ValidateToken_WrongIssuer(t *testing.T) {
	token, err := setupTestJWTService(t, 1).GenerateToken(types.TokenRequest{Subject: "alice", Role: types.RoleRecruiter})
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: testSecret, Issuer: "https://idp.example.com", ExpirationHours: 1})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		Role: types.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			Issuer:    config.DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = setupTestJWTService(t, 1).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_UnknownRole(t *testing.T) {
	claims := &Claims{
		Role: "owner",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			Issuer:    config.DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = setupTestJWTService(t, 1).ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestJWTService_ValidateToken_Malformed(t *testing.T) {
	service := setupTestJWTService(t, 1)
	_, err := service.ValidateToken("")
	assert.Error(t, err)
	_, err = service.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
