package dto

import (
	"time"

	"github.com/clipstream/accounts/internal/model"
)

// RegisterRequest carries the text fields of the multipart registration
// form; the avatar and coverImage files are staged separately by the handler.
type RegisterRequest struct {
	FullName string `form:"fullName" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	UserName string `form:"userName" binding:"required,min=3,max=50"`
	Password string `form:"password" binding:"required,min=6,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest is the body fallback; the cookie takes precedence.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=100"`
}

// UserResponse is the sanitized user view: never includes the password hash
// or the stored refresh token.
type UserResponse struct {
	ID            uint      `json:"id"`
	UserName      string    `json:"userName"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatarUrl"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// NewUserResponse builds the sanitized view from a stored record.
func NewUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		UserName:      user.UserName,
		Email:         user.Email,
		FullName:      user.FullName,
		AvatarURL:     user.AvatarURL,
		CoverImageURL: user.CoverImageURL,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}
