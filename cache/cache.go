package cache

import (
	"context"
	"errors"
)

// CatalogCache stores read-mostly catalog listings as JSON values.
type CatalogCache interface {
	Get(ctx context.Context, key string, dst interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NoopCache is used when no redis address is configured. Every read misses.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, interface{}) error { return ErrCacheMiss }
func (NoopCache) Set(context.Context, string, interface{}) error { return nil }
func (NoopCache) Delete(context.Context, ...string) error { return nil }
