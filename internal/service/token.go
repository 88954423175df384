package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/clipstream/accounts/config"
	apperrors "github.com/clipstream/accounts/internal/errors"
	"github.com/clipstream/accounts/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are embedded in short-lived access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	UserName string `json:"user_name"`
}

// RefreshClaims carry only the user id; refresh tokens prove nothing beyond
// the right to request a new pair.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID uint `json:"user_id"`
}

// TokenService signs and verifies the two token classes with independent
// secrets, so compromise of one signing key does not forge the other class.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessExpiry:  cfg.AccessExpiry,
		refreshExpiry: cfg.RefreshExpiry,
	}
}

// IssueAccessToken creates a short-lived HS256 token carrying the user's
// identity claims.
func (s *TokenService) IssueAccessToken(user *model.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
		},
		UserID:   user.ID,
		Email:    user.Email,
		UserName: user.UserName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.accessSecret)
}

// IssueRefreshToken creates a long-lived HS256 token carrying only the user id.
func (s *TokenService) IssueRefreshToken(userID uint) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshExpiry)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.refreshSecret)
}

// VerifyAccessToken validates signature and expiry, returning typed claims.
// Callers can distinguish ErrTokenExpired from ErrTokenInvalid.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(tokenString, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken validates a refresh token against the refresh secret.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.verify(tokenString, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return apperrors.WrapError(apperrors.ErrTokenExpired, err)
		}
		return apperrors.WrapError(apperrors.ErrTokenInvalid, err)
	}

	if !token.Valid {
		return apperrors.ErrTokenInvalid
	}

	return nil
}
