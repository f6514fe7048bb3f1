package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
	"github.com/avatarctic/bookshelf/internal/core/domain/library"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const searchHistoryLimit = 10

type BookService struct {
	catalog   ports.CatalogClient
	favorites ports.FavoriteRepository
	shelves   ports.ShelfRepository
	history   ports.SearchHistoryRepository
	viewed    ports.RecentlyViewedRepository
	logger    *logrus.Logger
}

func NewBookService(catalogClient ports.CatalogClient, favorites ports.FavoriteRepository, shelves ports.ShelfRepository, history ports.SearchHistoryRepository, viewed ports.RecentlyViewedRepository, logger *logrus.Logger) ports.BookService {
	return &BookService{
		catalog:   catalogClient,
		favorites: favorites,
		shelves:   shelves,
		history:   history,
		viewed:    viewed,
		logger:    logger,
	}
}

// Search records the query in the user's history and runs it against the
// catalog. Catalog failures yield an empty result rather than an error.
func (s *BookService) Search(ctx context.Context, userID uuid.UUID, q, filter string) (*library.SearchResult, error) {
	query := catalog.FilteredQuery(filter, q)

	if query != "" {
		if err := s.history.Record(ctx, userID, query); err != nil {
			return nil, fmt.Errorf("failed to record search: %w", err)
		}
	}

	history, err := s.history.Recent(ctx, userID, searchHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load search history: %w", err)
	}

	books := []catalog.Item{}
	if query != "" {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": userID, "query": query}).Info("book search")
		}
		found, err := s.catalog.Search(ctx, query, 0)
		if err != nil {
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{"query": query}).WithError(err).Warn("catalog search failed")
			}
		} else if found != nil {
			books = found
		}
	}

	return &library.SearchResult{
		Query:   q,
		Filter:  filter,
		Books:   books,
		History: library.LabelHistory(history),
	}, nil
}

func (s *BookService) GetBook(ctx context.Context, userID uuid.UUID, bookID string) (*library.BookDetail, error) {
	item, err := s.catalog.LookupBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, library.ErrBookNotFound
		}
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"book_id": bookID}).WithError(err).Warn("catalog lookup failed")
		}
		return nil, fmt.Errorf("%w: %w", library.ErrCatalogUnavailable, err)
	}
	info := item.Info()

	fav, err := s.favorites.Get(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to check favorite: %w", err)
	}
	shelves, err := s.shelves.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load shelves: %w", err)
	}
	onShelves, err := s.shelves.ShelvesContaining(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shelf membership: %w", err)
	}

	title := info.Title
	if title == "" {
		title = "Untitled"
	}
	view := &library.RecentlyViewed{
		ID:        uuid.New(),
		UserID:    userID,
		BookID:    bookID,
		Title:     title,
		Thumbnail: info.ImageLinks.Thumbnail,
	}
	if err := s.viewed.Record(ctx, view); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": userID, "book_id": bookID}).WithError(err).Warn("failed to record recently viewed book")
		}
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": userID, "book_id": bookID, "title": title}).Info("book opened")
	}

	if shelves == nil {
		shelves = []*library.Shelf{}
	}
	if onShelves == nil {
		onShelves = []uuid.UUID{}
	}
	return &library.BookDetail{
		Book:       *item,
		IsFavorite: fav != nil,
		Shelves:    shelves,
		OnShelves:  onShelves,
	}, nil
}
