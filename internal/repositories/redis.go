package repositories

import (
	"time"

	"estudio/internal/config"
	"estudio/internal/repositories/cache"
)

// NewRedisConfig creates a RedisConfig with values from environment or defaults
func NewRedisConfig() *cache.RedisConfig {
	return &cache.RedisConfig{
		Host:         config.GetEnv("REDIS_HOST", "localhost"),
		Port:         config.GetEnv("REDIS_PORT", "6379"),
		Password:     config.GetEnv("REDIS_PASSWORD", ""),
		DB:           config.GetIntEnv("REDIS_DB", 0),
		PoolSize:     config.GetIntEnv("REDIS_POOL_SIZE", 10),
		MinIdleConns: config.GetIntEnv("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  config.GetDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  config.GetDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: config.GetDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}
