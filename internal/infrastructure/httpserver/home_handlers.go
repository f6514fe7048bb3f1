package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/bookshelf/internal/core/domain/contentcache"
	"github.com/avatarctic/bookshelf/internal/infrastructure/httpserver/helpers"
)

// AdminTokenHeader carries the shared secret for cache refreshes.
const AdminTokenHeader = "X-Admin-Token"

// home handles GET /home?filter=week|month|top|new
func (s *Server) home(c echo.Context) error {
	principal, err := helpers.GetPrincipalFromContext(c)
	if err != nil {
		return err
	}

	page, err := s.homeSvc.Home(c.Request().Context(), principal, c.QueryParam("filter"))
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithField("user_id", principal.UserID).Error("failed to build home page")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load home page")
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) clearRecentlyViewed(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	if err := s.homeSvc.ClearRecentlyViewed(c.Request().Context(), userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to clear recently viewed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) clearSearchHistory(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	if err := s.homeSvc.ClearSearchHistory(c.Request().Context(), userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to clear search history")
	}
	return c.NoContent(http.StatusNoContent)
}

// refreshGlobalCaches rebuilds the shared feeds. A partial storage failure
// still reports the counts that were produced.
func (s *Server) refreshGlobalCaches(c echo.Context) error {
	token := strings.TrimSpace(c.Request().Header.Get(AdminTokenHeader))
	if token == "" {
		token = c.QueryParam("token")
	}

	counts, err := s.homeSvc.RefreshGlobalCaches(c.Request().Context(), token)
	if errors.Is(err, contentcache.ErrUnauthorized) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	resp := map[string]interface{}{
		"status": "ok",
		"counts": counts,
	}
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("cache refresh completed with errors")
		}
		resp["status"] = "partial"
		resp["error"] = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}
