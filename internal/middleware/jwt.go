package middleware

import (
	"net/http"
	"strings"

	"github.com/clipstream/accounts/internal/constants"
	"github.com/clipstream/accounts/internal/service"
	ctxutil "github.com/clipstream/accounts/pkg/context"
	"github.com/clipstream/accounts/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type JWTMiddleware struct {
	tokens   *service.TokenService
	denylist *service.TokenDenylist
}

func NewJWTMiddleware(tokens *service.TokenService, denylist *service.TokenDenylist) *JWTMiddleware {
	return &JWTMiddleware{
		tokens:   tokens,
		denylist: denylist,
	}
}

// extractToken reads the access token from the Authorization header, falling
// back to the accessToken cookie set by login.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}

	if cookie, err := c.Cookie(constants.AccessTokenCookie); err == nil {
		return cookie
	}

	return ""
}

// RequireAuth validates the access token and stores the authenticated user
// id in both the gin context and the request context.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			logger.GetLogger().Warn("Missing access token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
			c.Abort()
			return
		}

		if m.denylist != nil {
			voided, err := m.denylist.Contains(c.Request.Context(), tokenString)
			if err != nil {
				logger.GetLogger().Warn("Denylist lookup failed, rejecting token",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err))
			}
			if err != nil || voided {
				c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
				c.Abort()
				return
			}
		}

		claims, err := m.tokens.VerifyAccessToken(tokenString)
		if err != nil {
			logger.GetLogger().Warn("Invalid or expired access token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
			c.Abort()
			return
		}

		c.Set(constants.GinKeyUserID, claims.UserID)
		c.Set(constants.GinKeyAccessToken, tokenString)
		if claims.ExpiresAt != nil {
			c.Set(constants.GinKeyTokenExpiry, claims.ExpiresAt.Time)
		}

		c.Request = c.Request.WithContext(
			ctxutil.WithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}
