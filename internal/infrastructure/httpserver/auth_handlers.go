package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/bookshelf/internal/core/domain/auth"
	"github.com/avatarctic/bookshelf/internal/core/domain/user"
	"github.com/avatarctic/bookshelf/internal/infrastructure/httpserver/helpers"
)

func (s *Server) signup(c echo.Context) error {
	var req user.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := s.userService.Signup(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		case errors.Is(err, user.ErrWeakPassword):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create account")
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) login(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := s.authSvc.Login(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, user.ErrEmailNotVerified) {
			return echo.NewHTTPError(http.StatusForbidden, "email not verified")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	c.SetCookie(s.sessionCookie(session.AccessToken, session.ExpiresAt))
	return c.JSON(http.StatusOK, session)
}

func (s *Server) logout(c echo.Context) error {
	token, ok := helpers.GetSessionTokenRaw(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	if err := s.authSvc.Logout(c.Request().Context(), token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to logout")
	}

	cookie := s.sessionCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	c.SetCookie(cookie)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// verifyEmail accepts the token as a query parameter (mail links) or as JSON.
func (s *Server) verifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if c.Request().Method == http.MethodPost {
		var req user.VerifyEmailRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if err := c.Validate(&req); err != nil {
			return err
		}
		token = req.Token
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing verification token")
	}

	verified, err := s.userService.VerifyEmail(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, user.ErrInvalidToken) {
			return echo.NewHTTPError(http.StatusBadRequest, "the verification link is invalid or has expired")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to verify email")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "email verified successfully",
		"verified": verified.EmailVerified,
	})
}

func (s *Server) resendVerificationEmail(c echo.Context) error {
	var req user.ResendVerificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := s.userService.ResendVerificationEmail(c.Request().Context(), req.Email)
	switch {
	case err == nil, errors.Is(err, user.ErrUserNotFound):
		// Unknown addresses get the same answer so accounts cannot be probed.
	case errors.Is(err, user.ErrAlreadyVerified):
		return echo.NewHTTPError(http.StatusConflict, "email already verified")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to send verification email")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "if the account exists, a verification email has been sent",
	})
}
