package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avatarctic/bookshelf/internal/core/domain/library"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/avatarctic/bookshelf/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type FavoriteRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewFavoriteRepository(database *db.Database, logger *logrus.Logger) ports.FavoriteRepository {
	return &FavoriteRepository{db: database, logger: logger}
}

// ListByUser returns favorites newest first.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*library.Favorite, error) {
	favorites := []*library.Favorite{}
	query := `
		SELECT id, user_id, book_id, title, authors, thumbnail, categories, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if err := r.db.DB.SelectContext(ctx, &favorites, query, userID, nullableLimit(limit)); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Error("db: failed to list favorites")
		}
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}

// Get returns nil, nil when the book is not a favorite.
func (r *FavoriteRepository) Get(ctx context.Context, userID uuid.UUID, bookID string) (*library.Favorite, error) {
	var f library.Favorite
	query := `
		SELECT id, user_id, book_id, title, authors, thumbnail, categories, created_at
		FROM favorites
		WHERE user_id = $1 AND book_id = $2`

	if err := r.db.DB.GetContext(ctx, &f, query, userID, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get favorite: %w", err)
	}
	return &f, nil
}

// Create inserts the favorite; an existing (user, book) pair is left untouched.
func (r *FavoriteRepository) Create(ctx context.Context, f *library.Favorite) error {
	query := `
		INSERT INTO favorites (id, user_id, book_id, title, authors, thumbnail, categories, created_at)
		VALUES (:id, :user_id, :book_id, :title, :authors, :thumbnail, :categories, :created_at)
		ON CONFLICT (user_id, book_id) DO NOTHING`

	if _, err := r.db.DB.NamedExecContext(ctx, query, f); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": f.UserID, "book_id": f.BookID}).WithError(err).Error("db: failed to create favorite")
		}
		return fmt.Errorf("failed to create favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, userID uuid.UUID, bookID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND book_id = $2`
	if _, err := r.db.DB.ExecContext(ctx, query, userID, bookID); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": userID, "book_id": bookID}).WithError(err).Error("db: failed to delete favorite")
		}
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}

// nullableLimit maps a non-positive limit to NULL, which Postgres reads as LIMIT ALL.
func nullableLimit(limit int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(limit), Valid: limit > 0}
}
