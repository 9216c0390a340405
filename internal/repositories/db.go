// Package repositories provides data access layer implementations.
// Shared period tables live in the public schema; client data lives in one
// schema per studio, selected per transaction with WithTenant.
package repositories

import (
	"fmt"
	"log"
	"os"
	"time"

	"estudio/internal/config"
	"estudio/internal/models"
	"estudio/internal/repositories/cache"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance used across the application.
var DB *gorm.DB
var CacheService *cache.CacheService

// DBConfig holds database connection pool configuration
type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// NewDBConfig reads pool settings from the environment.
func NewDBConfig() DBConfig {
	return DBConfig{
		MaxIdleConns:    config.GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		MaxOpenConns:    config.GetIntEnv("DB_MAX_OPEN_CONNS", 50),
		ConnMaxLifetime: config.GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime: config.GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
	}
}

// InitDB connects PostgreSQL and Redis and migrates the shared period tables.
// Tenant schemas are provisioned elsewhere and are never migrated here.
func InitDB() error {
	if err := initPostgres(NewDBConfig()); err != nil {
		return err
	}

	redisClient := cache.NewRedisClient(NewRedisConfig())
	CacheService = cache.NewCacheService(redisClient, config.PeriodCacheTTL())

	if err := DB.AutoMigrate(
		&models.Period{},
		&models.ScaleRow{},
		&models.FeeComponent{},
	); err != nil {
		return fmt.Errorf("failed to migrate period tables: %w", err)
	}

	log.Println("✅ PostgreSQL connected & migrations applied successfully!")
	return nil
}

func initPostgres(cfg DBConfig) error {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.GetEnv("DB_HOST", "localhost"),
		config.GetEnv("DB_USER", "postgres"),
		config.GetEnv("DB_PASSWORD", "postgres"),
		config.GetEnv("DB_NAME", "estudio"),
		config.GetEnv("DB_PORT", "5432"),
		config.GetEnv("DB_SSLMODE", "disable"),
	)

	// Configure GORM logger to ignore "record not found" errors
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  !config.IsProduction(),
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	DB = db
	return nil
}

// Close releases the PostgreSQL and Redis connections.
func Close() {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			log.Printf("⚠️ Failed to get database instance: %v", err)
		} else if err := sqlDB.Close(); err != nil {
			log.Printf("⚠️ Failed to close database connection: %v", err)
		}
	}

	if CacheService != nil {
		if err := CacheService.Close(); err != nil {
			log.Printf("⚠️ Failed to close Redis connection: %v", err)
		}
	}
}
