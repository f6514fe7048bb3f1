package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/bookshelf/internal/core/domain/user"
	"github.com/avatarctic/bookshelf/internal/infrastructure/httpserver/helpers"
)

// getOwnProfile returns the signed-in account.
func (s *Server) getOwnProfile(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	userObj, err := s.userService.GetUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load user")
	}
	return c.JSON(http.StatusOK, userObj)
}
