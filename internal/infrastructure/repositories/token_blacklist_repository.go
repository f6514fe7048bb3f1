package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/bookshelf/internal/core/ports"
)

// TokenBlacklistRedisRepository stores revoked access token hashes in Redis.
// Each entry expires together with the token it revokes.
type TokenBlacklistRedisRepository struct {
	client redis.Cmdable
	prefix string
	logger *logrus.Logger
}

// NewTokenBlacklistRedisRepository creates a new Redis token blacklist
func NewTokenBlacklistRedisRepository(client redis.Cmdable, keyPrefix string, logger *logrus.Logger) *TokenBlacklistRedisRepository {
	return &TokenBlacklistRedisRepository{client: client, prefix: keyPrefix + ":revoked", logger: logger}
}

var _ ports.TokenBlacklist = (*TokenBlacklistRedisRepository)(nil)

func (r *TokenBlacklistRedisRepository) key(tokenHash string) string {
	return fmt.Sprintf("%s:%s", r.prefix, tokenHash)
}

// Revoke blacklists the token hash until expiresAt. Already expired tokens are ignored.
func (r *TokenBlacklistRedisRepository) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(tokenHash), expiresAt.Unix(), ttl).Err(); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"token_hash": tokenHash}).WithError(err).Error("redis: failed to revoke token")
		}
		return fmt.Errorf("failed to store revoked token in Redis: %w", err)
	}
	return nil
}

func (r *TokenBlacklistRedisRepository) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenHash)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}
