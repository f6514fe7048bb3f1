package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/bookshelf/internal/core/domain/library"
	"github.com/avatarctic/bookshelf/internal/infrastructure/httpserver/helpers"
)

func shelfError(err error, msg string) error {
	if errors.Is(err, library.ErrShelfNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "shelf not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}

func (s *Server) listShelves(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	shelves, err := s.shelfSvc.List(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list shelves")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"shelves": shelves,
		"count":   len(shelves),
	})
}

func (s *Server) createShelf(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req library.CreateShelfRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	shelf, err := s.shelfSvc.Create(c.Request().Context(), userID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create shelf")
	}
	return c.JSON(http.StatusOK, shelf)
}

func (s *Server) viewShelf(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	shelfID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	detail, err := s.shelfSvc.View(c.Request().Context(), userID, shelfID)
	if err != nil {
		return shelfError(err, "failed to load shelf")
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) deleteShelf(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	shelfID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.shelfSvc.Delete(c.Request().Context(), userID, shelfID); err != nil {
		return shelfError(err, "failed to delete shelf")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) addShelfBook(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	shelfID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req library.AddShelfBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	book, err := s.shelfSvc.AddBook(c.Request().Context(), userID, shelfID, &req)
	if err != nil {
		return shelfError(err, "failed to add book to shelf")
	}
	return c.JSON(http.StatusOK, book)
}

func (s *Server) removeShelfBook(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	shelfID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.shelfSvc.RemoveBook(c.Request().Context(), userID, shelfID, c.Param("book_id")); err != nil {
		return shelfError(err, "failed to remove book from shelf")
	}
	return c.NoContent(http.StatusNoContent)
}
