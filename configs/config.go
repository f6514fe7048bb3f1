package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Email        EmailConfig
	Redis        RedisConfig
	Log          LogConfig
	RateLimit    RateLimitConfig
	Catalog      CatalogConfig
	ContentCache ContentCacheConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
	Environment    string
	SecureCookies  bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	DSN      string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type JWTConfig struct {
	Secret               string
	AccessTokenTTL       time.Duration
	VerificationTokenTTL time.Duration
	RequireVerifiedEmail bool
}

type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	CompanyName    string
	BaseURL        string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
	KeyPrefix    string
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

type RateLimitConfig struct {
	DefaultRequestsPerMinute int
	BurstMultiplier          float64
	Window                   time.Duration
	KeyPrefix                string
}

// CatalogConfig configures the Google Books volumes client.
type CatalogConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	BookCacheTTL      time.Duration
}

// ContentCacheConfig configures the home feed carousels and their two-tier cache.
type ContentCacheConfig struct {
	MinResults      int
	MaxResults      int
	GlobalTTL       time.Duration
	PersonalTTL     time.Duration
	RebuildTimeout  time.Duration
	SubQueryTimeout time.Duration
	SingleFlight    bool
	CarouselSize    int
	AdminToken      string
	// KeyPolicies overrides MinResults/MaxResults for individual subject
	// keys, read from CONTENT_CACHE_POLICY_<KEY>=min:max.
	KeyPolicies map[string]MergeBounds
}

// MergeBounds is a per-key merge threshold.
type MergeBounds struct {
	Min int
	Max int
}

const keyPolicyEnvPrefix = "CONTENT_CACHE_POLICY_"

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("SERVER_PORT", "8080"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:    getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:     getEnv("TLS_KEY_FILE", ""),
			AllowedOrigins: getListEnv("ALLOWED_ORIGINS", nil),
			Environment:    getEnv("APP_ENV", "development"),
			SecureCookies:  getBoolEnv("SECURE_COOKIES", false),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "bookshelf"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret:               getEnvRequired("JWT_SECRET"),
			AccessTokenTTL:       getDurationEnv("JWT_ACCESS_TTL", 24*time.Hour),
			VerificationTokenTTL: getDurationEnv("EMAIL_VERIFICATION_TTL", 24*time.Hour),
			RequireVerifiedEmail: getBoolEnv("AUTH_REQUIRE_VERIFIED_EMAIL", true),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("FROM_EMAIL", "noreply@example.com"),
			FromName:       getEnv("FROM_NAME", "Bookshelf"),
			CompanyName:    getEnv("COMPANY_NAME", "Bookshelf"),
			BaseURL:        getEnvRequired("BASE_URL"),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
			KeyPrefix:    getEnv("REDIS_KEY_PREFIX", "bookshelf"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			DefaultRequestsPerMinute: getIntEnv("RATE_LIMIT_RPM", 120),
			BurstMultiplier:          getFloatEnv("RATE_LIMIT_BURST", 2.0),
			Window:                   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			KeyPrefix:                getEnv("RATE_LIMIT_KEY_PREFIX", "bookshelf:ratelimit"),
		},
		Catalog: CatalogConfig{
			BaseURL:           getEnv("GOOGLE_BOOKS_BASE_URL", "https://www.googleapis.com/books/v1/volumes"),
			APIKey:            getEnv("GOOGLE_BOOKS_API_KEY", ""),
			Timeout:           getDurationEnv("GOOGLE_BOOKS_TIMEOUT", 10*time.Second),
			RequestsPerSecond: getFloatEnv("GOOGLE_BOOKS_RPS", 5),
			Burst:             getIntEnv("GOOGLE_BOOKS_BURST", 10),
			BookCacheTTL:      getDurationEnv("BOOK_CACHE_TTL", 72*time.Hour),
		},
		ContentCache: ContentCacheConfig{
			MinResults:      getIntEnv("CONTENT_CACHE_MIN_RESULTS", 10),
			MaxResults:      getIntEnv("CONTENT_CACHE_MAX_RESULTS", 12),
			GlobalTTL:       getDurationEnv("CONTENT_CACHE_GLOBAL_TTL", 6*time.Hour),
			PersonalTTL:     getDurationEnv("CONTENT_CACHE_PERSONAL_TTL", 6*time.Hour),
			RebuildTimeout:  getDurationEnv("CONTENT_CACHE_REBUILD_TIMEOUT", 30*time.Second),
			SubQueryTimeout: getDurationEnv("CONTENT_CACHE_SUBQUERY_TIMEOUT", 10*time.Second),
			SingleFlight:    getBoolEnv("CONTENT_CACHE_SINGLE_FLIGHT", true),
			CarouselSize:    getIntEnv("CONTENT_CACHE_CAROUSEL_SIZE", 10),
			AdminToken:      getEnv("ADMIN_REFRESH_TOKEN", ""),
		},
	}

	if cfg.ContentCache.MaxResults < cfg.ContentCache.MinResults {
		return nil, fmt.Errorf("CONTENT_CACHE_MAX_RESULTS (%d) must be >= CONTENT_CACHE_MIN_RESULTS (%d)",
			cfg.ContentCache.MaxResults, cfg.ContentCache.MinResults)
	}

	policies, err := getKeyPolicies(keyPolicyEnvPrefix)
	if err != nil {
		return nil, err
	}
	cfg.ContentCache.KeyPolicies = policies

	// Build database DSN
	cfg.Database.DSN = fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("Required environment variable %s is not set", key))
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated variable, dropping empty parts.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getKeyPolicies collects PREFIX<KEY>=min:max variables keyed by the
// lower-cased KEY.
func getKeyPolicies(prefix string) (map[string]MergeBounds, error) {
	policies := make(map[string]MergeBounds)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) || value == "" {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, prefix))
		minStr, maxStr, ok := strings.Cut(value, ":")
		if key == "" || !ok {
			return nil, fmt.Errorf("%s must be min:max, got %q", name, value)
		}
		lo, errMin := strconv.Atoi(strings.TrimSpace(minStr))
		hi, errMax := strconv.Atoi(strings.TrimSpace(maxStr))
		if errMin != nil || errMax != nil || lo <= 0 || hi < lo {
			return nil, fmt.Errorf("%s must be min:max with 0 < min <= max, got %q", name, value)
		}
		policies[key] = MergeBounds{Min: lo, Max: hi}
	}
	return policies, nil
}
