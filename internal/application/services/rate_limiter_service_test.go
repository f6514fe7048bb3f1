package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avatarctic/bookshelf/internal/application/services"
	"github.com/avatarctic/bookshelf/test/mocks"
)

func TestRateLimiter_AllowsUpToBurst(t *testing.T) {
	windowStart := time.Now().Truncate(time.Minute)
	count := 0
	repo := &mocks.RateLimitRepositoryMock{
		IncrementWindowFn: func(ctx context.Context, subject string, window time.Duration, prefix string, ttl time.Duration) (int, time.Time, error) {
			require.Equal(t, "user:42", subject)
			require.Equal(t, "rl", prefix)
			require.Equal(t, 2*window, ttl)
			count++
			return count, windowStart, nil
		},
	}
	svc := services.NewRateLimiterService(repo, &services.RateLimiterConfig{
		DefaultRequestsPerMinute: 2,
		BurstMultiplier:          1.5,
		Window:                   time.Minute,
		KeyPrefix:                "rl",
	}, nil)

	for i := 0; i < 3; i++ {
		allowed, remaining, limit, reset, err := svc.Allow(context.Background(), "user:42")
		require.NoError(t, err)
		require.True(t, allowed)
		require.Equal(t, 2-i, remaining)
		require.Equal(t, 2, limit)
		require.Equal(t, windowStart.Add(time.Minute), reset)
	}

	allowed, remaining, _, _, err := svc.Allow(context.Background(), "user:42")
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	repo := &mocks.RateLimitRepositoryMock{
		IncrementWindowFn: func(ctx context.Context, subject string, window time.Duration, prefix string, ttl time.Duration) (int, time.Time, error) {
			return 0, time.Time{}, errors.New("redis down")
		},
	}
	svc := services.NewRateLimiterService(repo, nil, quietLogger())

	allowed, _, limit, _, err := svc.Allow(context.Background(), "ip:10.0.0.1")
	require.Error(t, err)
	require.True(t, allowed)
	require.Equal(t, 120, limit)
}
