package handler

import (
	"net/http"

	"github.com/clipstream/accounts/internal/constants"
	"github.com/clipstream/accounts/internal/dto"
	"github.com/clipstream/accounts/internal/service"
	"github.com/clipstream/accounts/pkg/logger"
	"github.com/clipstream/accounts/pkg/validation"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	accounts *service.AccountService
}

func NewUserHandler(accounts *service.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// Me returns the sanitized profile of the authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	userID := c.GetUint(constants.GinKeyUserID)

	user, err := h.accounts.CurrentUser(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("current user fetched successfully", user))
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid change password request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(
			"current and new password are required", validation.TranslateError(err)))
		return
	}

	userID := c.GetUint(constants.GinKeyUserID)

	if err := h.accounts.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("password changed successfully", nil))
}
