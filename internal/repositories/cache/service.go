package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"estudio/internal/recategorization"

	"github.com/redis/go-redis/v9"
)

// Entity prefixes used in cache keys
const (
	EntityPeriod = "period"
	KeyTables    = "tables"
)

// PeriodTables is the cached configuration of one period.
type PeriodTables struct {
	Scales     []recategorization.ScaleRow     `json:"scales"`
	Components []recategorization.FeeComponent `json:"components"`
}

type CacheService struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// GenerateKey builds keys of the form entity:keytype:value.
func GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// PeriodTablesKey is the key holding a period's scale and fee tables.
func PeriodTablesKey(code string) string {
	return GenerateKey(EntityPeriod, KeyTables, code)
}

// GetPeriodTables returns the cached tables of a period, if any.
func (s *CacheService) GetPeriodTables(ctx context.Context, code string) (*PeriodTables, bool, error) {
	key := PeriodTablesKey(code)
	var tables PeriodTables
	found, err := s.Get(ctx, key, &tables)
	if err != nil {
		return nil, false, err
	}
	if !found {
		s.misses.Add(1)
		log.Printf("Cache MISS: %s", key)
		return nil, false, nil
	}
	s.hits.Add(1)
	return &tables, true, nil
}

// SetPeriodTables caches a period's tables with the default TTL.
func (s *CacheService) SetPeriodTables(ctx context.Context, code string, tables *PeriodTables) error {
	if tables == nil {
		return errors.New("cannot cache nil period tables")
	}
	return s.Set(ctx, PeriodTablesKey(code), tables)
}

// InvalidatePeriod drops a period's cached tables.
func (s *CacheService) InvalidatePeriod(ctx context.Context, code string) error {
	return s.Delete(ctx, PeriodTablesKey(code))
}

// Stats returns hit and miss counters since start.
func (s *CacheService) Stats() map[string]interface{} {
	hits := s.hits.Load()
	misses := s.misses.Load()

	ratio := 0.0
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"hits":   hits,
		"misses": misses,
		"ratio":  ratio,
	}
}

// PoolStats exposes the Redis connection pool counters.
func (s *CacheService) PoolStats() *redis.PoolStats {
	return s.client.PoolStats()
}

// HealthCheck pings Redis.
func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// FlushAll flushes all keys from the cache
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
