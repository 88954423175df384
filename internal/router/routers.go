package router

import (
	configs "github.com/clipstream/accounts/config"
	"github.com/clipstream/accounts/internal/constants"
	"github.com/clipstream/accounts/internal/handler"
	"github.com/clipstream/accounts/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authHandler   *handler.AuthHandler
	userHandler   *handler.UserHandler
	healthHandler *handler.HealthHandler

	jwtMw  *middleware.JWTMiddleware
	config *configs.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	user *handler.UserHandler,
	health *handler.HealthHandler,
	jwtMw *middleware.JWTMiddleware,
	config *configs.Config,
) *Router {
	return &Router{
		authHandler:   auth,
		userHandler:   user,
		healthHandler: health,
		jwtMw:         jwtMw,
		config:        config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if r.config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = constants.MaxMultipartMemory

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.ContextMiddleware())
	router.Use(middleware.CORS())

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.BasicHealth)
		api.GET("/health/full", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			r.userRoutes(v1)
		}
	}

	return router
}
