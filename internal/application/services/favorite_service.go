package services

import (
	"context"
	"strings"
	"time"

	"github.com/avatarctic/bookshelf/internal/core/domain/library"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type FavoriteService struct {
	repo    ports.FavoriteRepository
	catalog ports.CatalogClient
	logger  *logrus.Logger
}

func NewFavoriteService(repo ports.FavoriteRepository, catalogClient ports.CatalogClient, logger *logrus.Logger) ports.FavoriteService {
	return &FavoriteService{repo: repo, catalog: catalogClient, logger: logger}
}

func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]*library.Favorite, error) {
	return s.repo.ListByUser(ctx, userID, 0)
}

// Add favorites a book once. The book's categories are copied from the
// catalog when it answers; they feed the home page genre ranking.
func (s *FavoriteService) Add(ctx context.Context, userID uuid.UUID, req *library.AddFavoriteRequest) (*library.Favorite, error) {
	existing, err := s.repo.Get(ctx, userID, req.BookID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	fav := &library.Favorite{
		ID:         uuid.New(),
		UserID:     userID,
		BookID:     req.BookID,
		Title:      req.Title,
		Authors:    req.Authors,
		Thumbnail:  req.Thumbnail,
		Categories: s.categories(ctx, req.BookID),
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(ctx, fav); err != nil {
		return nil, err
	}
	return fav, nil
}

func (s *FavoriteService) categories(ctx context.Context, bookID string) string {
	item, err := s.catalog.LookupBook(ctx, bookID)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"book_id": bookID}).WithError(err).Warn("could not fetch categories")
		}
		return ""
	}
	return strings.Join(item.Info().Categories, ", ")
}

func (s *FavoriteService) Remove(ctx context.Context, userID uuid.UUID, bookID string) error {
	return s.repo.Delete(ctx, userID, bookID)
}
