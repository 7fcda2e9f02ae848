package auth

import (
	"testing"
	"time"

	"github.com/corvell/imagetier/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-at-least-32-characters-long"

func newTestJWTService(t *testing.T) *JWTService {
	service, err := NewJWTService(testSecret, time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return service
}

// --- 测试 NewJWTService ---

func TestNewJWTService_ShortSecret(t *testing.T) {
	_, err := NewJWTService("too-short", time.Hour, 24*time.Hour)
	assert.Error(t, err)
}

func TestNewJWTService_EphemeralSecret(t *testing.T) {
	service, err := NewJWTService("", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	assert.NotNil(t, service)
}

// --- 测试签发与解析 ---

func TestGenerateTokenPair_RoundTrip(t *testing.T) {
	service := newTestJWTService(t)
	user := &models.User{
		Model:    gorm.Model{ID: 42},
		Username: "alice",
		IsAdmin:  true,
	}

	pair, err := service.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.AccessTokenExpiry.Before(pair.RefreshTokenExpiry))

	claims, err := service.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, true, claims["is_admin"])
	assert.Equal(t, TokenTypeAccess, claims["type"])

	refreshClaims, err := service.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refreshClaims["type"])
}

func TestParseToken_Invalid(t *testing.T) {
	service := newTestJWTService(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ParseToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	service := newTestJWTService(t)
	other, err := NewJWTService("another-secret-that-is-32-chars-long!!", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	pair, err := service.GenerateTokenPair(&models.User{Model: gorm.Model{ID: 1}, Username: "bob"})
	require.NoError(t, err)

	_, err = other.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	service := newTestJWTService(t)
	user := &models.User{Model: gorm.Model{ID: 1}, Username: "carol"}

	expired, err := service.sign(user, TokenTypeAccess, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = service.ParseToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
