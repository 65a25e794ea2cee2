package pkg

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/advising-service/internal/config"
	"github.com/SAP-F-2025/advising-service/internal/models"
)

// InitDatabase opens the Postgres connection and migrates the document
// tables. The users table is not migrated here; identities live in Casdoor.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{}
	if cfg.Environment == "production" {
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Degree{},
		&models.Roadmap{},
		&models.Profile{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// NewRedisClient builds a Redis client from the configured URL.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return redis.NewClient(opts), nil
}
