package model

import (
	"gorm.io/gorm"
)

// User is the persisted identity and credential record. UserName and Email
// are stored lowercased and trimmed; uniqueness is enforced by the store.
// RefreshToken holds the single currently valid refresh token, or "" when
// the user is logged out.
type User struct {
	gorm.Model
	UserName      string `gorm:"column:user_name;uniqueIndex;not null"`
	Email         string `gorm:"column:email;uniqueIndex;not null"`
	FullName      string `gorm:"column:full_name;index;not null"`
	PasswordHash  string `gorm:"column:password_hash;not null"`
	AvatarURL     string `gorm:"column:avatar_url;not null"`
	CoverImageURL string `gorm:"column:cover_image_url"`
	RefreshToken  string `gorm:"column:refresh_token"`
}
