package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidToken       = errors.New("invalid or expired verification token")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrWeakPassword       = errors.New("weak password")
)

type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	EmailVerified bool       `json:"email_verified" db:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at" db:"last_login_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// SignupRequest represents the request to register a new account
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// VerifyEmailRequest carries a verification token posted by API clients
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// ResendVerificationRequest asks for a fresh verification email
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// EmailToken is a one-shot email verification token
type EmailToken struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsExpired checks if the email token has expired
func (et *EmailToken) IsExpired() bool {
	return time.Now().After(et.ExpiresAt)
}

// IsUsed checks if the email token has been used
func (et *EmailToken) IsUsed() bool {
	return et.UsedAt != nil
}

// IsValid checks if the email token is still valid (not expired and not used)
func (et *EmailToken) IsValid() bool {
	return !et.IsExpired() && !et.IsUsed()
}
