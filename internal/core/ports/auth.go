package ports

import (
	"context"
	"time"

	"github.com/avatarctic/bookshelf/internal/core/domain/auth"
	"github.com/avatarctic/bookshelf/internal/core/domain/user"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.Session, error)
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
	Logout(ctx context.Context, token string) error
	IssueToken(ctx context.Context, user *user.User) (*auth.Session, error)
	GetTokenHash(token string) string
}

// TokenBlacklist records revoked access tokens until they would have expired.
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}
