package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/bookshelf/internal/core/domain/user"
	"github.com/avatarctic/bookshelf/internal/core/ports"
)

type EmailTokenRedisRepository struct {
	redisClient redis.Cmdable
	prefix      string
	logger      *logrus.Logger
}

func NewEmailTokenRedisRepository(redisClient redis.Cmdable, keyPrefix string, logger *logrus.Logger) *EmailTokenRedisRepository {
	return &EmailTokenRedisRepository{redisClient: redisClient, prefix: keyPrefix + ":email_token", logger: logger}
}

func (r *EmailTokenRedisRepository) keyByToken(token string) string {
	return fmt.Sprintf("%s:tok:%s", r.prefix, token)
}

func (r *EmailTokenRedisRepository) keyByID(id uuid.UUID) string {
	return fmt.Sprintf("%s:id:%s", r.prefix, id.String())
}

// Ensure EmailTokenRedisRepository implements ports.EmailTokenRepository
var _ ports.EmailTokenRepository = (*EmailTokenRedisRepository)(nil)

func (r *EmailTokenRedisRepository) Create(ctx context.Context, t *user.EmailToken) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal email token: %w", err)
	}

	ttl := time.Until(t.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("email token already expired")
	}

	// store by token and by id for lookup/consume
	pipe := r.redisClient.TxPipeline()
	pipe.Set(ctx, r.keyByToken(t.Token), b, ttl)
	pipe.Set(ctx, r.keyByID(t.ID), b, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": t.UserID}).WithError(err).Error("redis: failed to store email token")
		}
		return fmt.Errorf("failed to store email token in redis: %w", err)
	}

	return nil
}

func (r *EmailTokenRedisRepository) Get(ctx context.Context, token string) (*user.EmailToken, error) {
	b, err := r.redisClient.Get(ctx, r.keyByToken(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, user.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get email token from redis: %w", err)
	}

	var t user.EmailToken
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal email token: %w", err)
	}

	return &t, nil
}

// MarkAsUsed consumes the token by deleting both of its keys.
func (r *EmailTokenRedisRepository) MarkAsUsed(ctx context.Context, id uuid.UUID) error {
	idKey := r.keyByID(id)

	b, err := r.redisClient.Get(ctx, idKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return user.ErrInvalidToken
		}
		return fmt.Errorf("failed to get email token by id: %w", err)
	}

	var t user.EmailToken
	if err := json.Unmarshal(b, &t); err != nil {
		return fmt.Errorf("failed to unmarshal email token: %w", err)
	}

	pipe := r.redisClient.TxPipeline()
	pipe.Del(ctx, idKey)
	pipe.Del(ctx, r.keyByToken(t.Token))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete email token keys: %w", err)
	}

	return nil
}
