package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type LoggingMiddleware struct {
	logger *logrus.Logger
}

func NewLoggingMiddleware(logger *logrus.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// RequestLogging writes one structured line per request once it completes.
func (m *LoggingMiddleware) RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.logger == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if err != nil {
				if h, ok := err.(*echo.HTTPError); ok {
					he = h
					status = h.Code
				}
			}
			fields := logrus.Fields{
				"method":     c.Request().Method,
				"path":       c.Path(),
				"status":     status,
				"latency_ms": time.Since(start).Milliseconds(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}
			entry := m.logger.WithFields(fields)
			switch {
			case err != nil && he == nil:
				entry.WithError(err).Error("request failed")
			case status >= 500:
				entry.Error("request completed")
			default:
				entry.Debug("request completed")
			}
			return err
		}
	}
}
