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
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ShelfRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewShelfRepository(database *db.Database, logger *logrus.Logger) ports.ShelfRepository {
	return &ShelfRepository{db: database, logger: logger}
}

func (r *ShelfRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*library.Shelf, error) {
	shelves := []*library.Shelf{}
	query := `
		SELECT id, user_id, name, created_at
		FROM shelves
		WHERE user_id = $1
		ORDER BY created_at
		LIMIT $2`

	if err := r.db.DB.SelectContext(ctx, &shelves, query, userID, nullableLimit(limit)); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Error("db: failed to list shelves")
		}
		return nil, fmt.Errorf("failed to list shelves: %w", err)
	}
	return shelves, nil
}

// GetByID returns nil, nil when the user owns no such shelf.
func (r *ShelfRepository) GetByID(ctx context.Context, userID, shelfID uuid.UUID) (*library.Shelf, error) {
	return r.getOne(ctx, `SELECT id, user_id, name, created_at FROM shelves WHERE user_id = $1 AND id = $2`, userID, shelfID)
}

// GetByName returns nil, nil when the user has no shelf with that name.
func (r *ShelfRepository) GetByName(ctx context.Context, userID uuid.UUID, name string) (*library.Shelf, error) {
	return r.getOne(ctx, `SELECT id, user_id, name, created_at FROM shelves WHERE user_id = $1 AND name = $2`, userID, name)
}

func (r *ShelfRepository) getOne(ctx context.Context, query string, args ...interface{}) (*library.Shelf, error) {
	var s library.Shelf
	if err := r.db.DB.GetContext(ctx, &s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shelf: %w", err)
	}
	return &s, nil
}

func (r *ShelfRepository) Create(ctx context.Context, s *library.Shelf) error {
	query := `
		INSERT INTO shelves (id, user_id, name, created_at)
		VALUES (:id, :user_id, :name, :created_at)`

	if _, err := r.db.DB.NamedExecContext(ctx, query, s); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": s.UserID}).WithError(err).Error("db: failed to create shelf")
		}
		return fmt.Errorf("failed to create shelf: %w", err)
	}
	return nil
}

// Delete removes the shelf's books, then the shelf, in one transaction.
func (r *ShelfRepository) Delete(ctx context.Context, userID, shelfID uuid.UUID) error {
	return r.db.InTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM shelf_books
			WHERE shelf_id IN (SELECT id FROM shelves WHERE id = $1 AND user_id = $2)`, shelfID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete shelf books: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM shelves WHERE id = $1 AND user_id = $2`, shelfID, userID)
		if err != nil {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"shelf_id": shelfID}).WithError(err).Error("db: failed to delete shelf")
			}
			return fmt.Errorf("failed to delete shelf: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return library.ErrShelfNotFound
		}
		return nil
	})
}

func (r *ShelfRepository) ListBooks(ctx context.Context, shelfID uuid.UUID) ([]*library.ShelfBook, error) {
	books := []*library.ShelfBook{}
	query := `
		SELECT id, shelf_id, book_id, title, authors, thumbnail, created_at
		FROM shelf_books
		WHERE shelf_id = $1
		ORDER BY created_at`

	if err := r.db.DB.SelectContext(ctx, &books, query, shelfID); err != nil {
		return nil, fmt.Errorf("failed to list shelf books: %w", err)
	}
	return books, nil
}

// GetBook returns nil, nil when the book is not on the shelf.
func (r *ShelfRepository) GetBook(ctx context.Context, shelfID uuid.UUID, bookID string) (*library.ShelfBook, error) {
	var b library.ShelfBook
	query := `
		SELECT id, shelf_id, book_id, title, authors, thumbnail, created_at
		FROM shelf_books
		WHERE shelf_id = $1 AND book_id = $2`

	if err := r.db.DB.GetContext(ctx, &b, query, shelfID, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shelf book: %w", err)
	}
	return &b, nil
}

func (r *ShelfRepository) AddBook(ctx context.Context, b *library.ShelfBook) error {
	query := `
		INSERT INTO shelf_books (id, shelf_id, book_id, title, authors, thumbnail, created_at)
		VALUES (:id, :shelf_id, :book_id, :title, :authors, :thumbnail, :created_at)
		ON CONFLICT (shelf_id, book_id) DO NOTHING`

	if _, err := r.db.DB.NamedExecContext(ctx, query, b); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"shelf_id": b.ShelfID, "book_id": b.BookID}).WithError(err).Error("db: failed to add shelf book")
		}
		return fmt.Errorf("failed to add book to shelf: %w", err)
	}
	return nil
}

func (r *ShelfRepository) RemoveBook(ctx context.Context, shelfID uuid.UUID, bookID string) error {
	if _, err := r.db.DB.ExecContext(ctx, `DELETE FROM shelf_books WHERE shelf_id = $1 AND book_id = $2`, shelfID, bookID); err != nil {
		return fmt.Errorf("failed to remove book from shelf: %w", err)
	}
	return nil
}

func (r *ShelfRepository) ShelvesContaining(ctx context.Context, userID uuid.UUID, bookID string) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	query := `
		SELECT sb.shelf_id
		FROM shelf_books sb
		JOIN shelves s ON s.id = sb.shelf_id
		WHERE s.user_id = $1 AND sb.book_id = $2`

	if err := r.db.DB.SelectContext(ctx, &ids, query, userID, bookID); err != nil {
		return nil, fmt.Errorf("failed to list shelves containing book: %w", err)
	}
	return ids, nil
}
