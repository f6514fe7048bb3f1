package ports

import (
	"context"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
}
