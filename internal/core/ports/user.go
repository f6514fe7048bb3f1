package ports

import (
	"context"

	"github.com/avatarctic/bookshelf/internal/core/domain/user"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, user *user.User) error
}

// UserService defines the interface for account business logic
type UserService interface {
	Signup(ctx context.Context, req *user.SignupRequest) (*user.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)

	// Email verification methods
	SendVerificationEmail(ctx context.Context, userID uuid.UUID) error
	VerifyEmail(ctx context.Context, token string) (*user.User, error)
	ResendVerificationEmail(ctx context.Context, email string) error
}
