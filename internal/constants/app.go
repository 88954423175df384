package constants

import "time"

// Cookie names used by the auth endpoints. Both cookies are set HTTP-only
// and secure; the transport never exposes tokens any other way besides the
// JSON body.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Gin context keys set by the auth middleware.
const (
	GinKeyUserID      = "user_id"
	GinKeyAccessToken = "access_token"
	GinKeyTokenExpiry = "token_expiry"
)

// Upload limits for staged multipart files.
const (
	MaxMultipartMemory = 16 << 20 // 16 MiB
	RequestTimeout     = 30 * time.Second
)
