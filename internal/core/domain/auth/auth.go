package auth

import (
	"time"

	"github.com/avatarctic/bookshelf/internal/core/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName is the http-only cookie that carries the access token.
const SessionCookieName = "access_token"

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is an issued access token and the user it belongs to
type Session struct {
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        *user.User `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`

	jwt.RegisteredClaims
}

// Principal identifies the signed-in user for a request.
type Principal struct {
	UserID uuid.UUID
	Email  string
}
