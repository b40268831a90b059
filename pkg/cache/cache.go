package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is a small read-through cache used for hot, rarely changing lookups
// (active audio masters, language settings).
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

type Config struct {
	Type  string // "local" or "redis"
	Local LocalConfig
	Redis RedisConfig
}

type LocalConfig struct {
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewCache creates a cache instance for the configured backend.
func NewCache(config Config) (Cache, error) {
	switch strings.ToLower(config.Type) {
	case "", "local":
		return NewGoCache(config.Local), nil
	case "redis":
		return NewRedisCache(config.Redis)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", config.Type)
	}
}
