package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/avatarctic/bookshelf/internal/infrastructure/httpserver/helpers"
	customMiddleware "github.com/avatarctic/bookshelf/internal/infrastructure/httpserver/middleware"
)

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
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

type ServerDeps struct {
	UserService        ports.UserService
	AuthService        ports.AuthService
	BookService        ports.BookService
	FavoriteService    ports.FavoriteService
	ShelfService       ports.ShelfService
	HomeService        ports.HomeService
	RateLimiterService ports.RateLimiterService
	HealthCheckers     []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	userService    ports.UserService
	authSvc        ports.AuthService
	bookSvc        ports.BookService
	favoriteSvc    ports.FavoriteService
	shelfSvc       ports.ShelfService
	homeSvc        ports.HomeService
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = helpers.NewRequestValidator()

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		userService:    deps.UserService,
		authSvc:        deps.AuthService,
		bookSvc:        deps.BookService,
		favoriteSvc:    deps.FavoriteService,
		shelfSvc:       deps.ShelfService,
		homeSvc:        deps.HomeService,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.AuthService,
			deps.RateLimiterService,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
