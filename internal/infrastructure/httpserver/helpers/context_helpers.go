package helpers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avatarctic/bookshelf/internal/core/domain/auth"
)

func GetUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	id, ok := GetUserIDRaw(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user context")
	}
	return id, nil
}

func GetUserEmailFromContext(c echo.Context) (string, error) {
	s, ok := GetUserEmailRaw(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid user email context")
	}
	return s, nil
}

// GetPrincipalFromContext returns the signed-in user set by the session middleware.
func GetPrincipalFromContext(c echo.Context) (auth.Principal, error) {
	id, err := GetUserIDFromContext(c)
	if err != nil {
		return auth.Principal{}, err
	}
	email, err := GetUserEmailFromContext(c)
	if err != nil {
		return auth.Principal{}, err
	}
	return auth.Principal{UserID: id, Email: email}, nil
}

// GetSessionToken extracts the access token from the session cookie or,
// failing that, from a Bearer authorization header.
func GetSessionToken(c echo.Context) (string, error) {
	if cookie, err := c.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "empty token")
	}
	return token, nil
}

// ParseUUIDParam reads a path parameter as a UUID.
func ParseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
