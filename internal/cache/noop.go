package cache

import "context"

// Cache is the read-model cache used by services.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Noop is used when Redis is not configured; every Get misses.
type Noop struct{}

func (Noop) Get(context.Context, string, any) error            { return ErrMiss }
func (Noop) Set(context.Context, string, any) error            { return nil }
func (Noop) Delete(context.Context, ...string) error           { return nil }
func (Noop) DeletePrefix(context.Context, string) (int, error) { return 0, nil }
