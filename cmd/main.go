package main

import (
	"os"
	"os/signal"
	"syscall"

	configs "github.com/clipstream/accounts/config"
	"github.com/clipstream/accounts/internal/handler"
	"github.com/clipstream/accounts/internal/middleware"
	"github.com/clipstream/accounts/internal/repository"
	"github.com/clipstream/accounts/internal/router"
	"github.com/clipstream/accounts/internal/service"
	"github.com/clipstream/accounts/pkg/database"
	"github.com/clipstream/accounts/pkg/logger"
	redisclient "github.com/clipstream/accounts/pkg/redis"
	"github.com/clipstream/accounts/pkg/storage"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(logger.Config{
		Environment: config.App.Environment,
		LogsPath:    config.App.LogsPath,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)
	logger.GetLogger().Info("Database connected and migrated")

	rdb, err := redisclient.NewClient(config)
	if err != nil {
		// The denylist degrades to a no-op without redis; logout still
		// clears the stored refresh token.
		logger.GetLogger().Warn("Redis unavailable, access token denylist disabled", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	uploader, err := storage.NewS3Uploader(config.Storage)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize media storage", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)

	// Services
	tokenService := service.NewTokenService(config.JWT)
	hasher := service.NewPasswordHasher()
	denylist := service.NewTokenDenylist(rdb)
	accountService := service.NewAccountService(userRepo, hasher, tokenService, uploader)

	// Handlers
	authHandler := handler.NewAuthHandler(accountService, denylist, config)
	userHandler := handler.NewUserHandler(accountService)
	healthHandler := handler.NewHealthHandler(db, rdb)

	// Middleware
	jwtMiddleware := middleware.NewJWTMiddleware(tokenService, denylist)

	r := router.NewRouter(
		authHandler,
		userHandler,
		healthHandler,
		jwtMiddleware,
		config,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}
