package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BASE_URL", "http://localhost:8080")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10, cfg.ContentCache.MinResults)
	require.Equal(t, 12, cfg.ContentCache.MaxResults)
	require.Equal(t, 6*time.Hour, cfg.ContentCache.GlobalTTL)
	require.True(t, cfg.ContentCache.SingleFlight)
	require.Empty(t, cfg.Email.SendGridAPIKey)
	require.True(t, cfg.JWT.RequireVerifiedEmail)
	require.Contains(t, cfg.Database.DSN, "host=localhost port=5432")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CONTENT_CACHE_GLOBAL_TTL", "90m")
	t.Setenv("CONTENT_CACHE_SINGLE_FLIGHT", "false")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("GOOGLE_BOOKS_RPS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 90*time.Minute, cfg.ContentCache.GlobalTTL)
	require.False(t, cfg.ContentCache.SingleFlight)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	require.Equal(t, 5.0, cfg.Catalog.RequestsPerSecond)
}

func TestLoadRejectsInvertedMergeBounds(t *testing.T) {
	setRequired(t)
	t.Setenv("CONTENT_CACHE_MIN_RESULTS", "20")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadPanicsWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("BASE_URL", "http://localhost:8080")
	require.Panics(t, func() { _, _ = Load() })
}

func TestLoadKeyPolicies(t *testing.T) {
	setRequired(t)
	t.Setenv("CONTENT_CACHE_POLICY_FEATURED", "6:8")
	t.Setenv("CONTENT_CACHE_POLICY_TOP", "10: 20")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, MergeBounds{Min: 6, Max: 8}, cfg.ContentCache.KeyPolicies["featured"])
	require.Equal(t, MergeBounds{Min: 10, Max: 20}, cfg.ContentCache.KeyPolicies["top"])
	require.NotContains(t, cfg.ContentCache.KeyPolicies, "month")
}

func TestLoadRejectsMalformedKeyPolicy(t *testing.T) {
	for _, value := range []string{"12", "a:b", "9:3", "0:4"} {
		t.Run(value, func(t *testing.T) {
			setRequired(t)
			t.Setenv("CONTENT_CACHE_POLICY_MONTH", value)
			_, err := Load()
			require.ErrorContains(t, err, "CONTENT_CACHE_POLICY_MONTH")
		})
	}
}
