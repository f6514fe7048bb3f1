package ports

import (
	"context"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
)

// CatalogClient queries the external book catalog.
type CatalogClient interface {
	// Search returns the records matching query. maxResults <= 0 leaves the
	// page size to the catalog.
	Search(ctx context.Context, query string, maxResults int) ([]catalog.Item, error)
	// LookupBook resolves a volume id, falling back to an ISBN search.
	// Returns catalog.ErrNotFound when neither matches.
	LookupBook(ctx context.Context, bookID string) (*catalog.Item, error)
}
