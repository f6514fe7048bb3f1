package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avatarctic/bookshelf/internal/core/domain/user"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/avatarctic/bookshelf/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo            ports.UserRepository
	emailService    ports.EmailService
	emailTokenRepo  ports.EmailTokenRepository
	verificationTTL time.Duration
	logger          *logrus.Logger
}

func NewUserService(repo ports.UserRepository, emailService ports.EmailService, emailTokenRepo ports.EmailTokenRepository, verificationTTL time.Duration, logger *logrus.Logger) ports.UserService {
	if verificationTTL <= 0 {
		verificationTTL = 24 * time.Hour
	}
	return &UserService{
		repo:            repo,
		emailService:    emailService,
		emailTokenRepo:  emailTokenRepo,
		verificationTTL: verificationTTL,
		logger:          logger,
	}
}

func (s *UserService) Signup(ctx context.Context, req *user.SignupRequest) (*user.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", user.ErrWeakPassword, err)
	}

	// Validate email uniqueness
	existingUser, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existingUser != nil:
		return nil, user.ErrEmailTaken
	case err != nil && !errors.Is(err, user.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	newUser := &user.User{
		ID:            uuid.New(),
		Email:         email,
		PasswordHash:  string(hashedPassword),
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Send verification email
	if err := s.sendVerification(ctx, newUser); err != nil {
		// Log error but don't fail signup
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"user_id": newUser.ID,
			}).WithError(err).Warn("failed to send verification email")
		}
	}

	return newUser, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// generateVerificationToken generates a secure random token for email verification
func (s *UserService) generateVerificationToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// SendVerificationEmail creates a verification token and sends verification email
func (s *UserService) SendVerificationEmail(ctx context.Context, userID uuid.UUID) error {
	usr, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	return s.sendVerification(ctx, usr)
}

func (s *UserService) sendVerification(ctx context.Context, usr *user.User) error {
	if usr.EmailVerified {
		return user.ErrAlreadyVerified
	}

	tokenStr, err := s.generateVerificationToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	token := &user.EmailToken{
		ID:        uuid.New(),
		UserID:    usr.ID,
		Token:     tokenStr,
		ExpiresAt: now.Add(s.verificationTTL),
		CreatedAt: now,
	}

	if err := s.emailTokenRepo.Create(ctx, token); err != nil {
		return fmt.Errorf("failed to save verification token: %w", err)
	}

	if err := s.emailService.SendVerificationEmail(ctx, usr.Email, tokenStr); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

// VerifyEmail verifies the user's email using the provided token
func (s *UserService) VerifyEmail(ctx context.Context, tokenStr string) (*user.User, error) {
	token, err := s.emailTokenRepo.Get(ctx, tokenStr)
	if err != nil {
		return nil, user.ErrInvalidToken
	}

	if !token.IsValid() {
		return nil, user.ErrInvalidToken
	}

	usr, err := s.repo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.emailTokenRepo.MarkAsUsed(ctx, token.ID); err != nil {
		return nil, fmt.Errorf("failed to mark token as used: %w", err)
	}

	usr.EmailVerified = true
	usr.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, usr); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return usr, nil
}

// ResendVerificationEmail resends verification email for the user
func (s *UserService) ResendVerificationEmail(ctx context.Context, email string) error {
	usr, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return user.ErrUserNotFound
	}

	if usr.EmailVerified {
		return user.ErrAlreadyVerified
	}

	return s.sendVerification(ctx, usr)
}
