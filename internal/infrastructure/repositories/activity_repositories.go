package repositories

import (
	"context"
	"fmt"

	"github.com/avatarctic/bookshelf/internal/core/domain/library"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/avatarctic/bookshelf/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// SearchHistoryRepository stores one row per (user, query).
type SearchHistoryRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewSearchHistoryRepository(database *db.Database, logger *logrus.Logger) ports.SearchHistoryRepository {
	return &SearchHistoryRepository{db: database, logger: logger}
}

// Record inserts the query or, when it already exists, moves it to the top.
func (r *SearchHistoryRepository) Record(ctx context.Context, userID uuid.UUID, query string) error {
	q := `
		INSERT INTO search_history (id, user_id, query, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, query) DO UPDATE SET created_at = EXCLUDED.created_at`

	if _, err := r.db.DB.ExecContext(ctx, q, uuid.New(), userID, query); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Error("db: failed to record search")
		}
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

func (r *SearchHistoryRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*library.SearchHistoryEntry, error) {
	entries := []*library.SearchHistoryEntry{}
	q := `
		SELECT id, user_id, query, created_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if err := r.db.DB.SelectContext(ctx, &entries, q, userID, nullableLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to list search history: %w", err)
	}
	return entries, nil
}

func (r *SearchHistoryRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.DB.ExecContext(ctx, `DELETE FROM search_history WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"user_id": userID}).Info("db: search history cleared")
	}
	return nil
}

// RecentlyViewedRepository keeps the latest view of each book per user.
type RecentlyViewedRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewRecentlyViewedRepository(database *db.Database, logger *logrus.Logger) ports.RecentlyViewedRepository {
	return &RecentlyViewedRepository{db: database, logger: logger}
}

// Record replaces any earlier view of the same book with a new row.
func (r *RecentlyViewedRepository) Record(ctx context.Context, v *library.RecentlyViewed) error {
	return r.db.InTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recently_viewed WHERE user_id = $1 AND book_id = $2`, v.UserID, v.BookID); err != nil {
			return fmt.Errorf("failed to delete previous view: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recently_viewed (id, user_id, book_id, title, thumbnail, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())`,
			v.ID, v.UserID, v.BookID, v.Title, v.Thumbnail)
		if err != nil {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"user_id": v.UserID, "book_id": v.BookID}).WithError(err).Error("db: failed to record view")
			}
			return fmt.Errorf("failed to record view: %w", err)
		}
		return nil
	})
}

func (r *RecentlyViewedRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*library.RecentlyViewed, error) {
	views := []*library.RecentlyViewed{}
	q := `
		SELECT id, user_id, book_id, title, thumbnail, created_at
		FROM recently_viewed
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if err := r.db.DB.SelectContext(ctx, &views, q, userID, nullableLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to list recently viewed: %w", err)
	}
	return views, nil
}

func (r *RecentlyViewedRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.DB.ExecContext(ctx, `DELETE FROM recently_viewed WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear recently viewed: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"user_id": userID}).Info("db: recently viewed cleared")
	}
	return nil
}
