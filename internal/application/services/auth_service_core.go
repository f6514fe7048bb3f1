package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	config "github.com/avatarctic/bookshelf/configs"
	"github.com/avatarctic/bookshelf/internal/core/domain/auth"
	"github.com/avatarctic/bookshelf/internal/core/domain/user"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  ports.UserRepository
	blacklist ports.TokenBlacklist
	jwtConfig *config.JWTConfig
	logger    *logrus.Logger
}

func NewAuthService(userRepo ports.UserRepository, blacklist ports.TokenBlacklist, jwtConfig *config.JWTConfig, logger *logrus.Logger) ports.AuthService {
	return &AuthService{
		userRepo:  userRepo,
		blacklist: blacklist,
		jwtConfig: jwtConfig,
		logger:    logger,
	}
}

func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.Session, error) {
	foundUser, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(foundUser.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	if s.jwtConfig.RequireVerifiedEmail && !foundUser.EmailVerified {
		return nil, user.ErrEmailNotVerified
	}

	session, err := s.IssueToken(ctx, foundUser)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	foundUser.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, foundUser); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": foundUser.ID}).WithError(err).Warn("failed to update user last login time")
		}
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": foundUser.ID}).Info("user logged in")
	}
	return session, nil
}

// Logout revokes the token until the moment it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(s.jwtConfig.AccessTokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.blacklist.Revoke(ctx, s.GetTokenHash(token), expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
