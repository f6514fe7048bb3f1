package repositories

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
	"github.com/avatarctic/bookshelf/internal/core/ports"
)

// Utility helpers
func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// CachingCatalog decorates a CatalogClient with cache-aside book lookups.
// Searches pass straight through.
type CachingCatalog struct {
	inner ports.CatalogClient
	cache ports.Cache
	ttl   time.Duration
}

func NewCachingCatalog(inner ports.CatalogClient, cache ports.Cache, ttl time.Duration) *CachingCatalog {
	return &CachingCatalog{inner: inner, cache: cache, ttl: ttl}
}

func bookKey(bookID string) string { return "book:" + bookID }

func (c *CachingCatalog) Search(ctx context.Context, query string, maxResults int) ([]catalog.Item, error) {
	return c.inner.Search(ctx, query, maxResults)
}

func (c *CachingCatalog) LookupBook(ctx context.Context, bookID string) (*catalog.Item, error) {
	key := bookKey(bookID)
	if v, ok := cacheGet[catalog.Item](c.cache, ctx, key); ok {
		return v, nil
	}
	res, err, _ := sf.Do(key, func() (any, error) {
		if v, ok := cacheGet[catalog.Item](c.cache, ctx, key); ok {
			return v, nil
		}
		item, err := c.inner.LookupBook(ctx, bookID)
		if err != nil {
			return nil, err
		}
		cacheSetSilently(c.cache, ctx, key, item, c.ttl)
		return item, nil
	})
	if err != nil {
		return nil, err
	}
	item, ok := res.(*catalog.Item)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return item, nil
}

// Simple validation to ensure decorators implement interfaces at compile time
var _ ports.CatalogClient = (*CachingCatalog)(nil)

// singleflight group for coalescing cache-miss loads in-process
var sf singleflight.Group
