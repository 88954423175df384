package service

import (
	"testing"
	"time"

	"github.com/clipstream/accounts/config"
	apperrors "github.com/clipstream/accounts/internal/errors"
	"github.com/clipstream/accounts/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestTokenService(accessExpiry, refreshExpiry time.Duration) *TokenService {
	return NewTokenService(config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  accessExpiry,
		RefreshExpiry: refreshExpiry,
	})
}

func testUser() *model.User {
	return &model.User{
		Model:        gorm.Model{ID: 42},
		UserName:     "chiara",
		Email:        "chiara@example.com",
		FullName:     "Chiara Rossi",
		PasswordHash: "$2a$10$irrelevant",
		AvatarURL:    "https://cdn.example.com/media/avatar.png",
	}
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(15*time.Minute, 10*24*time.Hour)
	user := testUser()

	token, err := svc.IssueAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "chiara@example.com", claims.Email)
	assert.Equal(t, "chiara", claims.UserName)
	assert.Equal(t, "42", claims.Subject)
}

func TestTokenService_RefreshTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(15*time.Minute, 10*24*time.Hour)

	token, err := svc.IssueRefreshToken(42)
	require.NoError(t, err)

	claims, err := svc.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestTokenService_ExpiredAccessToken(t *testing.T) {
	svc := newTestTokenService(-time.Minute, 10*24*time.Hour)

	token, err := svc.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	assert.NotErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestTokenService_WrongSecretIsInvalid(t *testing.T) {
	issuer := newTestTokenService(15*time.Minute, 10*24*time.Hour)
	verifier := NewTokenService(config.JWTConfig{
		AccessSecret:  "different-access-secret",
		RefreshSecret: "different-refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 10 * 24 * time.Hour,
	})

	token, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

// An access token must never verify as a refresh token: the two classes are
// signed with independent secrets.
func TestTokenService_CrossClassRejected(t *testing.T) {
	svc := newTestTokenService(15*time.Minute, 10*24*time.Hour)

	accessToken, err := svc.IssueAccessToken(testUser())
	require.NoError(t, err)
	refreshToken, err := svc.IssueRefreshToken(42)
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(accessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = svc.VerifyAccessToken(refreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestTokenService_GarbageToken(t *testing.T) {
	svc := newTestTokenService(15*time.Minute, 10*24*time.Hour)

	_, err := svc.VerifyAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = svc.VerifyRefreshToken("")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}
