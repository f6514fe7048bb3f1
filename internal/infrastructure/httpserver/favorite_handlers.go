package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/bookshelf/internal/core/domain/library"
	"github.com/avatarctic/bookshelf/internal/infrastructure/httpserver/helpers"
)

func (s *Server) listFavorites(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	favorites, err := s.favoriteSvc.List(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list favorites")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

func (s *Server) addFavorite(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req library.AddFavoriteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fav, err := s.favoriteSvc.Add(c.Request().Context(), userID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to add favorite")
	}
	return c.JSON(http.StatusOK, fav)
}

func (s *Server) removeFavorite(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	if err := s.favoriteSvc.Remove(c.Request().Context(), userID, c.Param("book_id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to remove favorite")
	}
	return c.NoContent(http.StatusNoContent)
}
