package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/cafe-discovery/internal/config"
	"github.com/ukydev/cafe-discovery/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService(config.AuthConfig{JWTSecret: "test-secret"})
	require.NoError(t, err)
	return service
}

func testUser() *models.User {
	return &models.User{
		ID:    primitive.NewObjectID(),
		Email: "test@example.com",
		Role:  models.RoleMember,
	}
}

func TestNewService(t *testing.T) {
	service, err := NewService(config.AuthConfig{JWTSecret: "s"})
	assert.NoError(t, err)
	assert.NotNil(t, service)
	assert.Equal(t, 24*time.Hour, service.tokenExp)

	service, err = NewService(config.AuthConfig{JWTSecret: "s", TokenExpiry: time.Hour})
	assert.NoError(t, err)
	assert.Equal(t, time.Hour, service.tokenExp)

	_, err = NewService(config.AuthConfig{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestService_HashPassword(t *testing.T) {
	service := newTestService(t)

	password := "testpassword123"
	hash, err := service.HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestService_CheckPassword(t *testing.T) {
	service := newTestService(t)

	password := "testpassword123"
	hash, _ := service.HashPassword(password)

	// Test correct password
	assert.True(t, service.CheckPassword(password, hash))

	// Test incorrect password
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_GenerateAndValidateToken(t *testing.T) {
	service := newTestService(t)
	user := testUser()

	token, err := service.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)

	// Bearer prefix is accepted
	claims, err = service.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
}

func TestService_ValidateToken_Invalid(t *testing.T) {
	service := newTestService(t)
	other, err := NewService(config.AuthConfig{JWTSecret: "other-secret"})
	require.NoError(t, err)

	foreign, err := other.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = service.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ValidateToken("invalid-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// unsupported role
	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "abc", "email": "a@b.co", "role": "viewer",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := bad.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = service.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	service := newTestService(t)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "abc", "email": "a@b.co", "role": "member",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = service.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := newTestService(t)

	token, err := service.ExtractTokenFromHeader("Bearer abc.def.ghi")
	assert.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "Bearer a b"} {
		_, err := service.ExtractTokenFromHeader(header)
		assert.ErrorIs(t, err, ErrInvalidToken, "header %q", header)
	}
}

func TestService_ValidatePassword(t *testing.T) {
	service := newTestService(t)

	assert.NoError(t, service.ValidatePassword("password123"))

	err := service.ValidatePassword("short")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")

	err = service.ValidatePassword(strings.Repeat("a", 73))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at most 72 characters")
}

func TestService_ValidateEmail(t *testing.T) {
	service := newTestService(t)

	assert.NoError(t, service.ValidateEmail("test@example.com"))

	for _, email := range []string{"testexample.com", "test@", "test", "test@localhost", "Test <test@example.com>"} {
		err := service.ValidateEmail(email)
		assert.Error(t, err, email)
		assert.Contains(t, err.Error(), "invalid email format")
	}
}

func TestService_ValidateName(t *testing.T) {
	service := newTestService(t)

	assert.NoError(t, service.ValidateName("first_name", "Ada"))

	err := service.ValidateName("first_name", "  ")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "first_name is required")

	err = service.ValidateName("last_name", strings.Repeat("a", 51))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "less than 50 characters")
}

func TestService_TokenExpiration(t *testing.T) {
	service := newTestService(t)

	token, _ := service.GenerateToken(testUser())

	// Token should be valid immediately
	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)

	// Check expiration time
	now := time.Now().Unix()
	assert.Greater(t, claims.Exp, now)
	assert.LessOrEqual(t, claims.Exp, now+int64(service.tokenExp.Seconds())+1)
}
