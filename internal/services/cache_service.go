package services

import (
	"context"
	"time"
)

// CacheService is the caching capability repositories and services lean on.
// Implemented by pkg/cache.RedisCache; a nil CacheService disables caching.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Increment(ctx context.Context, key string) (int64, error)
}
