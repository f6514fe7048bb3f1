package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/avatarctic/bookshelf/internal/core/domain/auth"
	"github.com/avatarctic/bookshelf/internal/core/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

func (s *AuthService) GetTokenHash(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return fmt.Sprintf("%x", hasher.Sum(nil))
}

func (s *AuthService) IssueToken(ctx context.Context, u *user.User) (*auth.Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.jwtConfig.AccessTokenTTL)

	claims := &auth.Claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &auth.Session{
		AccessToken: accessTokenString,
		ExpiresAt:   expiresAt,
		User:        u,
	}, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &auth.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	revoked, err := s.blacklist.IsRevoked(ctx, s.GetTokenHash(tokenString))
	if err != nil {
		return nil, err
	}

	if revoked {
		return nil, fmt.Errorf("token is blacklisted")
	}

	return claims, nil
}
