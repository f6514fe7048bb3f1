package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avatarctic/bookshelf/internal/core/domain/user"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/avatarctic/bookshelf/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const userColumns = `id, email, password_hash, email_verified, last_login_at, created_at, updated_at`

// UserRepository implements the user repository interface
type UserRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(database *db.Database, logger *logrus.Logger) ports.UserRepository {
	return &UserRepository{
		db:     database,
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.DB.ExecContext(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.EmailVerified, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailTaken
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": u.ID}).WithError(err).Error("db: failed to create user")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("db: user created")
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var u user.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.DB.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"user_id": id}).Debug("db: user not found by ID")
			}
			return nil, user.ErrUserNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": id}).WithError(err).Error("db: failed to get user by ID")
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	err := r.db.DB.GetContext(ctx, &u, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if r.logger != nil {
				r.logger.Debug("db: user not found by email")
			}
			return nil, user.ErrUserNotFound
		}
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to get user by email")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &u, nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, email_verified = $4, last_login_at = $5, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.EmailVerified, u.LastLoginAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": u.ID}).WithError(err).Error("db: failed to update user")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": u.ID}).Debug("db: update affected 0 rows - user not found")
		}
		return user.ErrUserNotFound
	}

	return nil
}

// isUniqueViolation reports a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
