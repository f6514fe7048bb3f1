package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/bookshelf/configs"
	"github.com/avatarctic/bookshelf/internal/application/services"
	"github.com/avatarctic/bookshelf/internal/core/domain/contentcache"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/avatarctic/bookshelf/internal/infrastructure/db"
	"github.com/avatarctic/bookshelf/internal/infrastructure/email"
	"github.com/avatarctic/bookshelf/internal/infrastructure/googlebooks"
	"github.com/avatarctic/bookshelf/internal/infrastructure/health"
	"github.com/avatarctic/bookshelf/internal/infrastructure/httpserver"
	"github.com/avatarctic/bookshelf/internal/infrastructure/metrics"
	"github.com/avatarctic/bookshelf/internal/infrastructure/redis"
	"github.com/avatarctic/bookshelf/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting bookshelf application...")

	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations:", err)
	}

	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Redis backed stores
	blacklistRepo := repositories.NewTokenBlacklistRedisRepository(redisClient, cfg.Redis.KeyPrefix, logger)
	emailTokenRepo := repositories.NewEmailTokenRedisRepository(redisClient, cfg.Redis.KeyPrefix, logger)
	rateLimitRepo := repositories.NewRateLimitRedisRepository(redisClient)
	redisCache := redis.NewRedisCache(redisClient, cfg.Redis.KeyPrefix+":cache")

	// Postgres repositories
	userRepo := repositories.NewUserRepository(database, logger)
	favoriteRepo := repositories.NewFavoriteRepository(database, logger)
	shelfRepo := repositories.NewShelfRepository(database, logger)
	historyRepo := repositories.NewSearchHistoryRepository(database, logger)
	viewedRepo := repositories.NewRecentlyViewedRepository(database, logger)
	contentCacheRepo, err := repositories.NewContentCacheRepository(database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize content cache repository:", err)
	}
	defer contentCacheRepo.Close()

	// Catalog: HTTP client, circuit breaker, then the book lookup cache
	booksClient := googlebooks.NewClient(googlebooks.Config{
		BaseURL:           cfg.Catalog.BaseURL,
		APIKey:            cfg.Catalog.APIKey,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Burst:             cfg.Catalog.Burst,
	}, logger)
	breaker := googlebooks.NewCircuitBreakerClient(booksClient, googlebooks.BreakerSettings{}, metrics.NewBreakerMetrics(prometheus.DefaultRegisterer), logger)
	catalogClient := repositories.NewCachingCatalog(breaker, redisCache, cfg.Catalog.BookCacheTTL)

	emailService, err := email.NewEmailService(&email.EmailConfig{
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		CompanyName:    cfg.Email.CompanyName,
		BaseURL:        cfg.Email.BaseURL,
		TokenTTL:       cfg.JWT.VerificationTokenTTL,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service:", err)
	}

	userService := services.NewUserService(userRepo, emailService, emailTokenRepo, cfg.JWT.VerificationTokenTTL, logger)
	authService := services.NewAuthService(userRepo, blacklistRepo, &cfg.JWT, logger)

	keyPolicies := make(map[string]contentcache.MergePolicy, len(cfg.ContentCache.KeyPolicies))
	for key, b := range cfg.ContentCache.KeyPolicies {
		keyPolicies[key] = contentcache.MergePolicy{MinResults: b.Min, MaxResults: b.Max}
	}
	contentCache := services.NewContentCacheService(contentCacheRepo, &services.ContentCacheConfig{
		MinResults:     cfg.ContentCache.MinResults,
		MaxResults:     cfg.ContentCache.MaxResults,
		KeyPolicies:    keyPolicies,
		RebuildTimeout: cfg.ContentCache.RebuildTimeout,
		SingleFlight:   cfg.ContentCache.SingleFlight,
	}, metrics.NewContentCacheMetrics(prometheus.DefaultRegisterer), logger)

	homeService := services.NewHomeService(services.HomeDeps{
		Favorites:      favoriteRepo,
		Shelves:        shelfRepo,
		SearchHistory:  historyRepo,
		RecentlyViewed: viewedRepo,
		Catalog:        catalogClient,
		Cache:          contentCache,
	}, &services.HomeConfig{
		GlobalTTL:       cfg.ContentCache.GlobalTTL,
		PersonalTTL:     cfg.ContentCache.PersonalTTL,
		SubQueryTimeout: cfg.ContentCache.SubQueryTimeout,
		CarouselSize:    cfg.ContentCache.CarouselSize,
		AdminToken:      cfg.ContentCache.AdminToken,
	}, logger)
	if cfg.ContentCache.AdminToken == "" {
		logger.Warn("ADMIN_REFRESH_TOKEN not set; cache refresh endpoint will reject every request")
	}

	bookService := services.NewBookService(catalogClient, favoriteRepo, shelfRepo, historyRepo, viewedRepo, logger)
	favoriteService := services.NewFavoriteService(favoriteRepo, catalogClient, logger)
	shelfService := services.NewShelfService(shelfRepo, logger)

	rateLimiterService := services.NewRateLimiterService(rateLimitRepo, &services.RateLimiterConfig{
		DefaultRequestsPerMinute: cfg.RateLimit.DefaultRequestsPerMinute,
		BurstMultiplier:          cfg.RateLimit.BurstMultiplier,
		Window:                   cfg.RateLimit.Window,
		KeyPrefix:                cfg.RateLimit.KeyPrefix,
	}, logger)

	hcSlice := []ports.HealthChecker{
		health.NewDBHealthChecker(database),
		health.NewRedisHealthChecker(redisClient),
		health.NewCatalogHealthChecker(breaker),
	}

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Environment:    cfg.Server.Environment,
		SecureCookies:  cfg.Server.SecureCookies,
	}

	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		UserService:        userService,
		AuthService:        authService,
		BookService:        bookService,
		FavoriteService:    favoriteService,
		ShelfService:       shelfService,
		HomeService:        homeService,
		RateLimiterService: rateLimiterService,
		HealthCheckers:     hcSlice,
	})

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
