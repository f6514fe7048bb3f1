package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/bookshelf/internal/core/domain/library"
	"github.com/avatarctic/bookshelf/internal/infrastructure/httpserver/helpers"
)

// searchBooks handles GET /books/search?q=...&filter=intitle:
func (s *Server) searchBooks(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	result, err := s.bookSvc.Search(c.Request().Context(), userID, c.QueryParam("q"), c.QueryParam("filter"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to search books")
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) getBook(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	detail, err := s.bookSvc.GetBook(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, library.ErrBookNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		case errors.Is(err, library.ErrCatalogUnavailable):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "book catalog unavailable")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load book")
	}
	return c.JSON(http.StatusOK, detail)
}
