package database

import (
	"time"

	configs "github.com/clipstream/accounts/config"
	"github.com/clipstream/accounts/internal/model"
	"github.com/clipstream/accounts/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// NewPostgresDB opens the pooled connection and runs migrations. The handle
// is created once at startup and injected into repositories; nothing reaches
// into ambient state for it.
func NewPostgresDB(config *configs.Config) (*gorm.DB, error) {
	var dbLogger gormLogger.Interface
	switch config.App.Environment {
	case "production":
		dbLogger = gormLogger.Default.LogMode(gormLogger.Silent)
	default:
		dbLogger = gormLogger.Default.LogMode(gormLogger.Warn)
	}

	start := time.Now()
	db, err := gorm.Open(postgres.Open(config.DatabaseConnectionString()), &gorm.Config{
		Logger:      dbLogger,
		PrepareStmt: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(config.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(15 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.User{}); err != nil {
		return nil, err
	}

	logger.GetLogger().Info("Database connected",
		zap.String("host", config.Database.Host),
		zap.Int("port", config.Database.Port),
		zap.String("database", config.Database.Name),
		zap.Duration("connect_time", time.Since(start)),
	)

	return db, nil
}

// CloseDB closes the underlying connection pool.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if err := sqlDB.Close(); err != nil {
		logger.GetLogger().Error("Failed to close database connection", zap.Error(err))
		return err
	}

	logger.GetLogger().Info("Database connection closed")
	return nil
}
