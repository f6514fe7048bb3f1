package ports

import (
	"context"

	"github.com/avatarctic/bookshelf/internal/core/domain/auth"
	"github.com/avatarctic/bookshelf/internal/core/domain/library"
	"github.com/google/uuid"
)

// FavoriteRepository stores favorited books. List limits <= 0 mean no limit.
type FavoriteRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*library.Favorite, error)
	Get(ctx context.Context, userID uuid.UUID, bookID string) (*library.Favorite, error)
	Create(ctx context.Context, fav *library.Favorite) error
	Delete(ctx context.Context, userID uuid.UUID, bookID string) error
}

// ShelfRepository stores shelves and the books placed on them.
type ShelfRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*library.Shelf, error)
	GetByID(ctx context.Context, userID, shelfID uuid.UUID) (*library.Shelf, error)
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*library.Shelf, error)
	Create(ctx context.Context, shelf *library.Shelf) error
	// Delete removes the shelf and its books. Returns library.ErrShelfNotFound
	// when the user owns no such shelf.
	Delete(ctx context.Context, userID, shelfID uuid.UUID) error

	ListBooks(ctx context.Context, shelfID uuid.UUID) ([]*library.ShelfBook, error)
	GetBook(ctx context.Context, shelfID uuid.UUID, bookID string) (*library.ShelfBook, error)
	AddBook(ctx context.Context, book *library.ShelfBook) error
	RemoveBook(ctx context.Context, shelfID uuid.UUID, bookID string) error
	ShelvesContaining(ctx context.Context, userID uuid.UUID, bookID string) ([]uuid.UUID, error)
}

// SearchHistoryRepository keeps one row per distinct query, touched on reuse.
type SearchHistoryRepository interface {
	Record(ctx context.Context, userID uuid.UUID, query string) error
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*library.SearchHistoryEntry, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// RecentlyViewedRepository keeps one row per viewed book, newest on reuse.
type RecentlyViewedRepository interface {
	Record(ctx context.Context, view *library.RecentlyViewed) error
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*library.RecentlyViewed, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type BookService interface {
	Search(ctx context.Context, userID uuid.UUID, q, filter string) (*library.SearchResult, error)
	GetBook(ctx context.Context, userID uuid.UUID, bookID string) (*library.BookDetail, error)
}

type FavoriteService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*library.Favorite, error)
	Add(ctx context.Context, userID uuid.UUID, req *library.AddFavoriteRequest) (*library.Favorite, error)
	Remove(ctx context.Context, userID uuid.UUID, bookID string) error
}

type ShelfService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*library.Shelf, error)
	Create(ctx context.Context, userID uuid.UUID, req *library.CreateShelfRequest) (*library.Shelf, error)
	Delete(ctx context.Context, userID, shelfID uuid.UUID) error
	View(ctx context.Context, userID, shelfID uuid.UUID) (*library.ShelfDetail, error)
	AddBook(ctx context.Context, userID, shelfID uuid.UUID, req *library.AddShelfBookRequest) (*library.ShelfBook, error)
	RemoveBook(ctx context.Context, userID, shelfID uuid.UUID, bookID string) error
}

// HomeService assembles the personalized home feed.
type HomeService interface {
	Home(ctx context.Context, principal auth.Principal, filter string) (*library.HomePage, error)
	RefreshGlobalCaches(ctx context.Context, token string) (map[string]int, error)
	ClearRecentlyViewed(ctx context.Context, userID uuid.UUID) error
	ClearSearchHistory(ctx context.Context, userID uuid.UUID) error
}
