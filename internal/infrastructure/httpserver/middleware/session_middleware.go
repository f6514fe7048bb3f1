package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/avatarctic/bookshelf/internal/infrastructure/httpserver/helpers"
)

type SessionMiddleware struct {
	authService ports.AuthService
	logger      *logrus.Logger
}

func NewSessionMiddleware(authService ports.AuthService, logger *logrus.Logger) *SessionMiddleware {
	return &SessionMiddleware{authService: authService, logger: logger}
}

// RequireSession validates the access token and sets the user context.
func (m *SessionMiddleware) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := helpers.GetSessionToken(c)
			if err != nil {
				return err
			}

			claims, err := m.authService.ValidateToken(c.Request().Context(), token)
			if err != nil {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path}).WithError(err).Warn("session validation failed")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			helpers.SetUserID(c, claims.UserID)
			helpers.SetUserEmail(c, claims.Email)
			helpers.SetSessionToken(c, token)

			if m.logger != nil {
				m.logger.WithFields(logrus.Fields{"user_id": claims.UserID}).Debug("session validated and user context set")
			}
			return next(c)
		}
	}
}
