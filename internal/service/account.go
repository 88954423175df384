package service

import (
	"context"
	"errors"
	"strings"

	"github.com/clipstream/accounts/internal/dto"
	apperrors "github.com/clipstream/accounts/internal/errors"
	"github.com/clipstream/accounts/internal/model"
	ctxutil "github.com/clipstream/accounts/pkg/context"
	"github.com/clipstream/accounts/pkg/logger"
	"gorm.io/gorm"
)

// UserStore is the credential-store surface the account service depends on.
// *repository.UserRepository satisfies it.
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUserName(ctx context.Context, userName string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdateRefreshToken(ctx context.Context, id uint, refreshToken string) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}

// RegisterInput carries the registration form fields plus the local paths of
// the staged upload files. CoverImagePath may be empty.
type RegisterInput struct {
	FullName       string
	Email          string
	UserName       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// TokenPair is the result of login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccountService orchestrates registration, login, logout and token refresh
// over the store, hasher, issuer and uploader. It holds no mutable state of
// its own; concurrent requests race only on the stored refresh token, where
// the single-row update resolves last-write-wins.
type AccountService struct {
	store    UserStore
	hasher   *PasswordHasher
	tokens   *TokenService
	uploader MediaUploader
}

func NewAccountService(store UserStore, hasher *PasswordHasher, tokens *TokenService, uploader MediaUploader) *AccountService {
	return &AccountService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		uploader: uploader,
	}
}

// Register validates the form, uploads the staged media, hashes the password
// and creates the user. The avatar is mandatory; the cover image is uploaded
// best effort and its failure never blocks registration. An avatar already
// uploaded when a later step fails is not rolled back.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Register")

	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	userName := strings.ToLower(strings.TrimSpace(in.UserName))

	if fullName == "" || email == "" || userName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperrors.ErrValidation
	}

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		logger.InfoWithContext(ctx, "Registration rejected: email taken").
			String("email", email).
			Log()
		return nil, apperrors.ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if _, err := s.store.GetByUserName(ctx, userName); err == nil {
		logger.InfoWithContext(ctx, "Registration rejected: username taken").
			String("user_name", userName).
			Log()
		return nil, apperrors.ErrUserNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if in.AvatarPath == "" {
		return nil, apperrors.ErrAvatarRequired
	}

	avatarURL, err := s.uploader.Upload(ctx, in.AvatarPath)
	if err != nil {
		logger.WarnWithContext(ctx, "Avatar upload rejected").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrUploadRejected, err)
	}

	coverImageURL := ""
	if in.CoverImagePath != "" {
		coverImageURL, err = s.uploader.Upload(ctx, in.CoverImagePath)
		if err != nil {
			// Best effort: a failed cover upload never blocks registration.
			logger.WarnWithContext(ctx, "Cover image upload failed, continuing without it").
				String("email", email).
				Err(err).
				Log()
			coverImageURL = ""
		}
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		FullName:      fullName,
		Email:         email,
		UserName:      userName,
		PasswordHash:  passwordHash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
	}

	if err := s.store.Create(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User registered").
		String("email", email).
		Uint("new_user_id", user.ID).
		Log()

	response := dto.NewUserResponse(user)
	return &response, nil
}

// Login verifies credentials and, on success, issues and persists a fresh
// token pair. Unknown email and wrong password both return
// ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *AccountService) Login(ctx context.Context, email, password string) (*dto.UserResponse, *TokenPair, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Login")

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, nil, apperrors.ErrValidation
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.InfoWithContext(ctx, "Login failed: no such account").
				String("email", email).
				Log()
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		logger.WarnWithContext(ctx, "Login failed: bad credentials").
			String("email", email).
			Uint("account_id", user.ID).
			Log()
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	logger.InfoWithContext(ctx, "User logged in").
		String("email", email).
		Uint("account_id", user.ID).
		Log()

	response := dto.NewUserResponse(user)
	return &response, pair, nil
}

// Logout clears the stored refresh token, immediately invalidating any
// previously issued refresh token. A missing record is treated as success.
func (s *AccountService) Logout(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "Logout")

	if err := s.store.UpdateRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		logger.ErrorWithContext(ctx, "Failed to clear refresh token").
			Uint("account_id", userID).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User logged out").
		Uint("account_id", userID).
		Log()

	return nil
}

// Refresh redeems a refresh token for a new pair. The presented token must
// verify against the refresh secret, reference an existing user and exactly
// match the stored token; anything else is a 401-class failure. On success
// the pair is rotated: the old refresh token is no longer accepted.
func (s *AccountService) Refresh(ctx context.Context, incomingToken string) (*TokenPair, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Refresh")

	if incomingToken == "" {
		return nil, apperrors.WrapError(apperrors.ErrUnauthorized, errors.New("refresh token is required"))
	}

	claims, err := s.tokens.VerifyRefreshToken(incomingToken)
	if err != nil {
		logger.WarnWithContext(ctx, "Refresh token verification failed").
			Err(err).
			Log()
		return nil, err
	}

	user, err := s.store.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if user.RefreshToken != incomingToken {
		logger.WarnWithContext(ctx, "Stale refresh token presented").
			Uint("account_id", user.ID).
			Log()
		return nil, apperrors.ErrStaleRefreshToken
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Session refreshed").
		Uint("account_id", user.ID).
		Log()

	return pair, nil
}

// CurrentUser returns the sanitized view of an authenticated user.
func (s *AccountService) CurrentUser(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "CurrentUser")

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	response := dto.NewUserResponse(user)
	return &response, nil
}

// ChangePassword verifies the current password and stores a new hash. Only
// the password hash is rewritten; other fields stay untouched.
func (s *AccountService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "ChangePassword")

	if strings.TrimSpace(currentPassword) == "" || strings.TrimSpace(newPassword) == "" {
		return apperrors.ErrValidation
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		logger.WarnWithContext(ctx, "Password change failed: bad current password").
			Uint("account_id", userID).
			Log()
		return apperrors.ErrInvalidCredentials
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.store.UpdatePassword(ctx, userID, newHash); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password changed").
		Uint("account_id", userID).
		Log()

	return nil
}

// issueTokenPair creates fresh access and refresh tokens and persists the
// refresh token immediately. A persistence failure here is a system error,
// never an auth failure: the caller's credentials were already accepted.
func (s *AccountService) issueTokenPair(ctx context.Context, user *model.User) (*TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to sign access token").
			Uint("account_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to sign refresh token").
			Uint("account_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.store.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		logger.ErrorWithContext(ctx, "Failed to persist refresh token").
			Uint("account_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	user.RefreshToken = refreshToken

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
