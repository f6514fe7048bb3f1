package library

import (
	"errors"
	"time"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
	"github.com/google/uuid"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrShelfNotFound = errors.New("shelf not found")
)

// ErrCatalogUnavailable means the catalog could not answer, as opposed to
// answering that the book does not exist.
var ErrCatalogUnavailable = errors.New("book catalog unavailable")

type Favorite struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	BookID     string    `json:"book_id" db:"book_id"`
	Title      string    `json:"title" db:"title"`
	Authors    string    `json:"authors" db:"authors"`
	Thumbnail  string    `json:"thumbnail" db:"thumbnail"`
	Categories string    `json:"categories" db:"categories"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type Shelf struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ShelfBook struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ShelfID   uuid.UUID `json:"shelf_id" db:"shelf_id"`
	BookID    string    `json:"book_id" db:"book_id"`
	Title     string    `json:"title" db:"title"`
	Authors   string    `json:"authors" db:"authors"`
	Thumbnail string    `json:"thumbnail" db:"thumbnail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type SearchHistoryEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Query     string    `json:"query" db:"query"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type RecentlyViewed struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	BookID    string    `json:"book_id" db:"book_id"`
	Title     string    `json:"title" db:"title"`
	Thumbnail string    `json:"thumbnail" db:"thumbnail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SearchLabel is a stored query paired with its display label.
type SearchLabel struct {
	Query string `json:"query"`
	Label string `json:"label"`
}

// LabelHistory renders search history entries for display, newest first as given.
func LabelHistory(entries []*SearchHistoryEntry) []SearchLabel {
	out := make([]SearchLabel, 0, len(entries))
	for _, e := range entries {
		out = append(out, SearchLabel{Query: e.Query, Label: catalog.QueryLabel(e.Query)})
	}
	return out
}

// DedupeViewed keeps the newest view of every book, preserving order.
func DedupeViewed(views []*RecentlyViewed) []*RecentlyViewed {
	out := make([]*RecentlyViewed, 0, len(views))
	seen := make(map[string]struct{}, len(views))
	for _, v := range views {
		if _, ok := seen[v.BookID]; ok {
			continue
		}
		seen[v.BookID] = struct{}{}
		out = append(out, v)
	}
	return out
}

// AddFavoriteRequest represents the request to favorite a book
type AddFavoriteRequest struct {
	BookID    string `json:"book_id" validate:"required,max=64"`
	Title     string `json:"title" validate:"required,max=512"`
	Authors   string `json:"authors" validate:"max=512"`
	Thumbnail string `json:"thumbnail" validate:"omitempty,url"`
}

// CreateShelfRequest represents the request to create a shelf
type CreateShelfRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// AddShelfBookRequest represents the request to put a book on a shelf
type AddShelfBookRequest struct {
	BookID    string `json:"book_id" validate:"required,max=64"`
	Title     string `json:"title" validate:"required,max=512"`
	Authors   string `json:"authors" validate:"max=512"`
	Thumbnail string `json:"thumbnail" validate:"omitempty,url"`
}

type SearchResult struct {
	Query   string         `json:"query"`
	Filter  string         `json:"filter"`
	Books   []catalog.Item `json:"books"`
	History []SearchLabel  `json:"history"`
}

type BookDetail struct {
	Book       catalog.Item `json:"book"`
	IsFavorite bool         `json:"is_favorite"`
	Shelves    []*Shelf     `json:"shelves"`
	OnShelves  []uuid.UUID  `json:"on_shelves"`
}

type ShelfDetail struct {
	Shelf *Shelf       `json:"shelf"`
	Books []*ShelfBook `json:"books"`
}

type HomePage struct {
	Filter         string            `json:"filter"`
	Favorites      []*Favorite       `json:"favorites"`
	Shelves        []*Shelf          `json:"shelves"`
	SearchHistory  []SearchLabel     `json:"search_history"`
	RecentlyViewed []*RecentlyViewed `json:"recently_viewed"`
	Genres         []catalog.Genre   `json:"genres"`
	Carousel       []catalog.Item    `json:"carousel"`
	Featured       []catalog.Item    `json:"featured"`
	Recommended    []catalog.Item    `json:"recommended"`
}
