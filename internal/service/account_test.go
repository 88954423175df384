package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clipstream/accounts/config"
	apperrors "github.com/clipstream/accounts/internal/errors"
	"github.com/clipstream/accounts/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeUserStore is an in-memory UserStore with switchable failure modes.
type fakeUserStore struct {
	users  map[uint]*model.User
	nextID uint

	createErr             error
	updateRefreshTokenErr error
	updatePasswordErr     error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*model.User), nextID: 1}
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) GetByUserName(_ context.Context, userName string) (*model.User, error) {
	for _, u := range f.users {
		if u.UserName == userName {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) UpdateRefreshToken(_ context.Context, id uint, refreshToken string) error {
	if f.updateRefreshTokenErr != nil {
		return f.updateRefreshTokenErr
	}
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.RefreshToken = refreshToken
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uint, passwordHash string) error {
	if f.updatePasswordErr != nil {
		return f.updatePasswordErr
	}
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// fakeUploader records uploads and can fail per path.
type fakeUploader struct {
	uploads  []string
	failFor  map[string]error
	failNext error
}

func (f *fakeUploader) Upload(_ context.Context, localPath string) (string, error) {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return "", err
	}
	if err, ok := f.failFor[localPath]; ok {
		return "", err
	}
	f.uploads = append(f.uploads, localPath)
	return "https://cdn.example.com/" + localPath, nil
}

func newTestAccountService() (*AccountService, *fakeUserStore, *fakeUploader) {
	store := newFakeUserStore()
	uploader := &fakeUploader{failFor: make(map[string]error)}
	tokens := NewTokenService(config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 10 * 24 * time.Hour,
	})
	svc := NewAccountService(store, NewPasswordHasher(), tokens, uploader)
	return svc, store, uploader
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FullName:   "Chiara Rossi",
		Email:      "chiara@example.com",
		UserName:   "chiara",
		Password:   "s3cret-pass",
		AvatarPath: "staged/avatar.png",
	}
}

func TestRegister_Success(t *testing.T) {
	svc, store, uploader := newTestAccountService()

	in := validRegisterInput()
	in.CoverImagePath = "staged/cover.jpg"

	user, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "chiara@example.com", user.Email)
	assert.Equal(t, "chiara", user.UserName)
	assert.Equal(t, "https://cdn.example.com/staged/avatar.png", user.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/staged/cover.jpg", user.CoverImageURL)
	assert.Len(t, uploader.uploads, 2)

	stored, err := store.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegister_NormalizesEmailAndUserName(t *testing.T) {
	svc, _, _ := newTestAccountService()

	in := validRegisterInput()
	in.Email = "  Chiara@Example.COM "
	in.UserName = " CHIARA "

	user, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "chiara@example.com", user.Email)
	assert.Equal(t, "chiara", user.UserName)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _ := newTestAccountService()

	in := validRegisterInput()
	in.FullName = "   "

	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRegister_Conflicts(t *testing.T) {
	svc, _, _ := newTestAccountService()

	_, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	dup := validRegisterInput()
	dup.UserName = "someoneelse"
	_, err = svc.Register(context.Background(), dup)
	assert.ErrorIs(t, err, apperrors.ErrEmailExists)

	dup = validRegisterInput()
	dup.Email = "other@example.com"
	_, err = svc.Register(context.Background(), dup)
	assert.ErrorIs(t, err, apperrors.ErrUserNameExists)
}

func TestRegister_MissingAvatarCreatesNothing(t *testing.T) {
	svc, store, _ := newTestAccountService()

	in := validRegisterInput()
	in.AvatarPath = ""

	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, apperrors.ErrAvatarRequired)
	assert.Empty(t, store.users)
}

func TestRegister_AvatarUploadFailure(t *testing.T) {
	svc, store, uploader := newTestAccountService()
	uploader.failFor["staged/avatar.png"] = errors.New("bucket unavailable")

	_, err := svc.Register(context.Background(), validRegisterInput())
	assert.ErrorIs(t, err, apperrors.ErrUploadRejected)
	assert.Empty(t, store.users)
}

func TestRegister_CoverUploadFailureIsBestEffort(t *testing.T) {
	svc, _, uploader := newTestAccountService()
	uploader.failFor["staged/cover.jpg"] = errors.New("bucket unavailable")

	in := validRegisterInput()
	in.CoverImagePath = "staged/cover.jpg"

	user, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, user.CoverImageURL)
	assert.NotEmpty(t, user.AvatarURL)
}

func TestLogin_Success(t *testing.T) {
	svc, store, _ := newTestAccountService()
	registered, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	user, pair, err := svc.Login(context.Background(), "chiara@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	stored, err := store.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored.RefreshToken)
}

// Unknown email and wrong password are indistinguishable to the caller.
func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestAccountService()
	_, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	_, _, errUnknown := svc.Login(context.Background(), "nobody@example.com", "s3cret-pass")
	_, _, errWrongPass := svc.Login(context.Background(), "chiara@example.com", "bad-pass")

	assert.ErrorIs(t, errUnknown, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, apperrors.ErrInvalidCredentials)
	assert.Equal(t, apperrors.GetErrorMessage(errUnknown), apperrors.GetErrorMessage(errWrongPass))
}

func TestLogin_PersistFailureIsInternal(t *testing.T) {
	svc, store, _ := newTestAccountService()
	_, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	store.updateRefreshTokenErr = errors.New("connection reset")

	_, _, err = svc.Login(context.Background(), "chiara@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefresh_RotatesPair(t *testing.T) {
	svc, _, _ := newTestAccountService()
	_, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	_, pair, err := svc.Login(context.Background(), "chiara@example.com", "s3cret-pass")
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEmpty(t, rotated.RefreshToken)

	// The pre-rotation token is no longer the stored one.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrStaleRefreshToken)

	// The fresh token still works.
	_, err = svc.Refresh(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_EmptyToken(t *testing.T) {
	svc, _, _ := newTestAccountService()

	_, err := svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, _, _ := newTestAccountService()

	_, err := svc.Refresh(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestRefresh_UnknownUser(t *testing.T) {
	svc, store, _ := newTestAccountService()
	_, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	_, pair, err := svc.Login(context.Background(), "chiara@example.com", "s3cret-pass")
	require.NoError(t, err)

	delete(store.users, 1)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestLogout_InvalidatesRefreshToken(t *testing.T) {
	svc, _, _ := newTestAccountService()
	registered, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	_, pair, err := svc.Login(context.Background(), "chiara@example.com", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), registered.ID))

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrStaleRefreshToken)
}

func TestLogout_MissingRecordIsSuccess(t *testing.T) {
	svc, _, _ := newTestAccountService()

	assert.NoError(t, svc.Logout(context.Background(), 999))
}

func TestCurrentUser(t *testing.T) {
	svc, _, _ := newTestAccountService()
	registered, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	user, err := svc.CurrentUser(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.Email, user.Email)

	_, err = svc.CurrentUser(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestAccountService()
	registered, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), registered.ID, "bad-pass", "new-pass")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), registered.ID, "s3cret-pass", "new-pass"))

	_, _, err = svc.Login(context.Background(), "chiara@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "chiara@example.com", "new-pass")
	assert.NoError(t, err)
}
