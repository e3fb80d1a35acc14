package database

import (
	"fmt"
	"time"

	"github.com/arvoinvest/backend/internal/config"
	"github.com/arvoinvest/backend/internal/database/migrations"
	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/queue"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB initializes the database connection with configuration
func InitDB(dbConfig config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dbConfig.URL), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdle)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run automigrations: %w", err)
	}

	return db, nil
}

// Migrate auto-migrates every model so columns added after the versioned
// migrations still land in the schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Investment{},
		&models.Commission{},
		&models.Deposit{},
		&models.Withdrawal{},
		&models.LedgerEntry{},
		&queue.Job{},
	)
}
