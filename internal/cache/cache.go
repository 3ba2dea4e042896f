package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss отличает промах кеша от транспортной ошибки.
var ErrMiss = errors.New("cache: miss")

// Cache — контракт key-value кеша для результатов анализа.
// Реализации обязаны быть потокобезопасными.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	// Set с ttl <= 0 хранит значение без срока.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}
