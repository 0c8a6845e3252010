package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"chesslounge/backend/internal/logging"
	"chesslounge/backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrNotInitialized is returned by Get before Init or after Shutdown.
var ErrNotInitialized = errors.New("database: not initialized")

var (
	mu sync.Mutex
	db *gorm.DB
)

// Init opens the process-wide connection and runs migrations.
// Calling Init again while connected returns the existing handle.
func Init(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	return InitWith(postgres.Open(dsn), logger)
}

// InitWith is Init for an arbitrary gorm dialector.
func InitWith(dialector gorm.Dialector, logger *zap.Logger) (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		return db, nil
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.Gorm(logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("Database connection established.")

	if err := conn.AutoMigrate(&models.Account{}, &models.Message{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database migrated successfully.")

	db = conn
	return db, nil
}

// Get returns the connection opened by Init.
func Get() (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if db == nil {
		return nil, ErrNotInitialized
	}
	return db, nil
}

// Shutdown closes the connection pool. Init may be called again afterwards.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()

	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
