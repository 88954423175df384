package repository

import (
	"context"
	"time"

	"github.com/clipstream/accounts/internal/model"
	ctxutil "github.com/clipstream/accounts/pkg/context"
	"github.com/clipstream/accounts/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByID")

	start := time.Now()
	var user model.User
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get user by ID").
			Uint("lookup_id", id).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

// GetByEmail finds a user by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByEmail")

	start := time.Now()
	var user model.User
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get user by email").
			String("email", email).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

// GetByUserName finds a user by normalized username.
func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByUserName")

	start := time.Now()
	var user model.User
	result := r.db.WithContext(ctx).Where("user_name = ?", userName).First(&user)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get user by username").
			String("user_name", userName).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

// Create inserts a new user record. Unique-index violations on email or
// user_name surface as the driver's duplicate-key error.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Create")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("email", user.Email).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "User created").
		String("email", user.Email).
		Uint("created_id", user.ID).
		Duration(time.Since(start)).
		Log()

	return nil
}

// UpdateRefreshToken overwrites the stored refresh token for the user; an
// empty token logs the user out. A single-row update, so concurrent writers
// resolve last-write-wins.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id uint, refreshToken string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateRefreshToken")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("refresh_token", refreshToken)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update refresh token").
			Uint("target_id", id).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.DebugWithContext(ctx, "Refresh token updated").
		Uint("target_id", id).
		Bool("has_token", refreshToken != "").
		Duration(time.Since(start)).
		Log()

	return nil
}

// UpdatePassword replaces the stored password hash. Other fields are left
// untouched so the hash is only ever rewritten when the password changes.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdatePassword")

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update password hash").
			Uint("target_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
