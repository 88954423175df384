package router

import "github.com/gin-gonic/gin"

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	{
		// Public routes (no authentication required)
		users.POST("/register", r.authHandler.Register)
		users.POST("/login", r.authHandler.Login)
		users.POST("/refresh-token", r.authHandler.RefreshToken)

		// Protected routes (JWT authentication required)
		protected := users.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("/logout", r.authHandler.Logout)
			protected.POST("/change-password", r.userHandler.ChangePassword)
			protected.GET("/me", r.userHandler.Me)
		}
	}
}
