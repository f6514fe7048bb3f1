package ports

import (
	"context"
	"time"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
	"github.com/avatarctic/bookshelf/internal/core/domain/contentcache"
)

// RebuildFunc produces a fresh payload for a cache miss.
type RebuildFunc func(ctx context.Context) ([]catalog.Item, error)

// ContentCache serves carousels and recommendations from a process-local tier
// backed by a durable tier, rebuilding on miss.
type ContentCache interface {
	// Get returns the payload for subjectKey. A non-nil error wrapping
	// contentcache.ErrStorage may accompany a usable payload.
	Get(ctx context.Context, subjectKey string, signature []string, ttl time.Duration, rebuild RebuildFunc) ([]catalog.Item, error)
	Invalidate(ctx context.Context, subjectKey string) error
	Peek(ctx context.Context, subjectKey string) (*contentcache.Entry, error)
}

// ContentCacheRepository is the durable tier. Get returns nil, nil for an absent key.
type ContentCacheRepository interface {
	Get(ctx context.Context, subjectKey string) (*contentcache.Entry, error)
	Upsert(ctx context.Context, entry *contentcache.Entry) error
	MarkInvalidated(ctx context.Context, subjectKey string) error
}

// ContentCacheObserver receives cache outcomes for metrics.
type ContentCacheObserver interface {
	Hit(tier string)
	Miss()
	Rebuilt(items int, supplemented bool)
	StorageFailure(op string)
}
