package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	configs "github.com/clipstream/accounts/config"
	"github.com/clipstream/accounts/internal/constants"
	"github.com/clipstream/accounts/internal/dto"
	apperrors "github.com/clipstream/accounts/internal/errors"
	"github.com/clipstream/accounts/internal/service"
	"github.com/clipstream/accounts/pkg/logger"
	"github.com/clipstream/accounts/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	accounts *service.AccountService
	denylist *service.TokenDenylist
	config   *configs.Config
}

func NewAuthHandler(accounts *service.AccountService, denylist *service.TokenDenylist, config *configs.Config) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		denylist: denylist,
		config:   config,
	}
}

// stageUpload writes a multipart file into the upload temp dir under a
// unique name and returns its local path. The uploader removes the file
// after pushing it to durable storage.
func (h *AuthHandler) stageUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.config.Upload.TempDir, 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%s", uuid.NewString(), filepath.Base(file.Filename))
	path := filepath.Join(h.config.Upload.TempDir, name)

	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", err
	}

	return path, nil
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, pair *service.TokenPair) {
	c.SetCookie(constants.AccessTokenCookie, pair.AccessToken,
		int(h.config.JWT.AccessExpiry.Seconds()), "/", "", true, true)
	c.SetCookie(constants.RefreshTokenCookie, pair.RefreshToken,
		int(h.config.JWT.RefreshExpiry.Seconds()), "/", "", true, true)
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	c.SetCookie(constants.AccessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie(constants.RefreshTokenCookie, "", -1, "/", "", true, true)
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.ToHTTPStatus(err),
		constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
}

// Register handles the multipart registration form: four text fields plus a
// required avatar file and an optional coverImage file.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid registration request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(
			"all fields are required", validation.TranslateError(err)))
		return
	}

	input := service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		UserName: req.UserName,
		Password: req.Password,
	}

	if avatar, err := c.FormFile("avatar"); err == nil {
		path, err := h.stageUpload(c, avatar)
		if err != nil {
			logger.ErrorWithContext(ctx, "Failed to stage avatar upload").
				Err(err).
				Log()
			respondError(c, apperrors.WrapError(apperrors.ErrInternal, err))
			return
		}
		input.AvatarPath = path
	}

	if cover, err := c.FormFile("coverImage"); err == nil {
		path, err := h.stageUpload(c, cover)
		if err != nil {
			// Cover staging is best effort, same as its upload.
			logger.WarnWithContext(ctx, "Failed to stage cover image, continuing without it").
				Err(err).
				Log()
		} else {
			input.CoverImagePath = path
		}
	}

	user, err := h.accounts.Register(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse("user created successfully", user))
}

// Login verifies credentials and returns the sanitized user plus both tokens
// in the body and as HTTP-only secure cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid login request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(
			"email and password are required", validation.TranslateError(err)))
		return
	}

	user, pair, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setTokenCookies(c, pair)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("user logged in successfully", dto.LoginResponse{
		User:         *user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}))
}

// Logout clears the stored refresh token, voids the presented access token
// for its remaining lifetime and clears both cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	userID := c.GetUint(constants.GinKeyUserID)

	if err := h.accounts.Logout(ctx, userID); err != nil {
		respondError(c, err)
		return
	}

	if h.denylist != nil {
		token := c.GetString(constants.GinKeyAccessToken)
		if expiry, ok := c.Get(constants.GinKeyTokenExpiry); ok && token != "" {
			if expiresAt, ok := expiry.(time.Time); ok {
				if err := h.denylist.Add(ctx, token, time.Until(expiresAt)); err != nil {
					logger.WarnWithContext(ctx, "Failed to denylist access token on logout").
						Err(err).
						Log()
				}
			}
		}
	}

	h.clearTokenCookies(c)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("user logged out successfully", nil))
}

// RefreshToken rotates the token pair. The refresh token comes from the
// cookie when present, otherwise from the JSON body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	ctx := c.Request.Context()

	incoming, err := c.Cookie(constants.RefreshTokenCookie)
	if err != nil || incoming == "" {
		var req dto.RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			incoming = req.RefreshToken
		}
	}

	pair, err := h.accounts.Refresh(ctx, incoming)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setTokenCookies(c, pair)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("session refreshed successfully", dto.RefreshTokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}))
}
