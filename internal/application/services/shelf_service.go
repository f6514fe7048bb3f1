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

type ShelfService struct {
	repo   ports.ShelfRepository
	logger *logrus.Logger
}

func NewShelfService(repo ports.ShelfRepository, logger *logrus.Logger) ports.ShelfService {
	return &ShelfService{repo: repo, logger: logger}
}

func (s *ShelfService) List(ctx context.Context, userID uuid.UUID) ([]*library.Shelf, error) {
	return s.repo.ListByUser(ctx, userID, 0)
}

// Create returns the user's existing shelf when the name is already taken.
func (s *ShelfService) Create(ctx context.Context, userID uuid.UUID, req *library.CreateShelfRequest) (*library.Shelf, error) {
	name := strings.TrimSpace(req.Name)
	existing, err := s.repo.GetByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	shelf := &library.Shelf{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, shelf); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": userID, "shelf_id": shelf.ID}).Info("shelf created")
	}
	return shelf, nil
}

func (s *ShelfService) Delete(ctx context.Context, userID, shelfID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, shelfID); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": userID, "shelf_id": shelfID}).Info("shelf deleted")
	}
	return nil
}

func (s *ShelfService) View(ctx context.Context, userID, shelfID uuid.UUID) (*library.ShelfDetail, error) {
	shelf, err := s.owned(ctx, userID, shelfID)
	if err != nil {
		return nil, err
	}
	books, err := s.repo.ListBooks(ctx, shelfID)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []*library.ShelfBook{}
	}
	return &library.ShelfDetail{Shelf: shelf, Books: books}, nil
}

// AddBook places a book on a shelf once; repeated adds return the existing row.
func (s *ShelfService) AddBook(ctx context.Context, userID, shelfID uuid.UUID, req *library.AddShelfBookRequest) (*library.ShelfBook, error) {
	if _, err := s.owned(ctx, userID, shelfID); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetBook(ctx, shelfID, req.BookID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	book := &library.ShelfBook{
		ID:        uuid.New(),
		ShelfID:   shelfID,
		BookID:    req.BookID,
		Title:     req.Title,
		Authors:   req.Authors,
		Thumbnail: req.Thumbnail,
		CreatedAt: time.Now(),
	}
	if err := s.repo.AddBook(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *ShelfService) RemoveBook(ctx context.Context, userID, shelfID uuid.UUID, bookID string) error {
	if _, err := s.owned(ctx, userID, shelfID); err != nil {
		return err
	}
	return s.repo.RemoveBook(ctx, shelfID, bookID)
}

func (s *ShelfService) owned(ctx context.Context, userID, shelfID uuid.UUID) (*library.Shelf, error) {
	shelf, err := s.repo.GetByID(ctx, userID, shelfID)
	if err != nil {
		return nil, err
	}
	if shelf == nil {
		return nil, library.ErrShelfNotFound
	}
	return shelf, nil
}
