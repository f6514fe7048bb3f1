package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/avatarctic/bookshelf/internal/infrastructure/httpserver/helpers"
)

type RateLimitMiddleware struct {
	rateLimiter ports.RateLimiterService
	logger      *logrus.Logger
}

func NewRateLimitMiddleware(rateLimiter ports.RateLimiterService, logger *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter, logger: logger}
}

// Subject identifies who is charged for a request: the signed-in user when
// the session middleware ran, the client address otherwise.
func Subject(c echo.Context) string {
	if id, ok := helpers.GetUserIDRaw(c); ok {
		return "user:" + id.String()
	}
	return "ip:" + c.RealIP()
}

func (r *RateLimitMiddleware) Handler() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r.rateLimiter == nil {
				return next(c)
			}
			subject := Subject(c)
			allowed, remaining, limit, reset, rlErr := r.rateLimiter.Allow(c.Request().Context(), subject)
			if rlErr != nil {
				if r.logger != nil {
					r.logger.WithError(rlErr).WithField("subject", subject).Warn("rate limiter error; allowing request (fail-open)")
				}
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			c.Response().Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			c.Response().Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))

			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
