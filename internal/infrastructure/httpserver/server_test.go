package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/bookshelf/internal/core/domain/auth"
	"github.com/avatarctic/bookshelf/internal/core/domain/contentcache"
	"github.com/avatarctic/bookshelf/internal/core/domain/library"
	"github.com/avatarctic/bookshelf/internal/core/domain/user"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/avatarctic/bookshelf/internal/infrastructure/httpserver"
	tmocks "github.com/avatarctic/bookshelf/test/mocks"
)

const goodToken = "good-token"

var testUserID = uuid.MustParse("6f1c1c3e-7c57-4a8e-9f59-4f3f4a3f9b10")

func sessionAuth() *tmocks.AuthServiceMock {
	return &tmocks.AuthServiceMock{
		ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
			if token != goodToken {
				return nil, errors.New("invalid token")
			}
			return &auth.Claims{UserID: testUserID, Email: "reader@example.com"}, nil
		},
	}
}

func newTestServer(t *testing.T, deps httpserver.ServerDeps) *echo.Echo {
	t.Helper()
	if deps.AuthService == nil {
		deps.AuthService = sessionAuth()
	}
	if deps.UserService == nil {
		deps.UserService = &tmocks.UserServiceMock{}
	}
	if deps.BookService == nil {
		deps.BookService = &tmocks.BookServiceMock{}
	}
	if deps.FavoriteService == nil {
		deps.FavoriteService = &tmocks.FavoriteServiceMock{}
	}
	if deps.ShelfService == nil {
		deps.ShelfService = &tmocks.ShelfServiceMock{}
	}
	if deps.HomeService == nil {
		deps.HomeService = &tmocks.HomeServiceMock{}
	}
	if deps.RateLimiterService == nil {
		deps.RateLimiterService = &tmocks.RateLimiterServiceMock{}
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	srv := httpserver.NewServer(&httpserver.ServerConfig{Host: "127.0.0.1", Port: "0"}, logger, deps)
	return srv.Echo()
}

func do(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer() map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + goodToken}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestSignup(t *testing.T) {
	users := &tmocks.UserServiceMock{
		SignupFn: func(ctx context.Context, req *user.SignupRequest) (*user.User, error) {
			switch req.Email {
			case "taken@example.com":
				return nil, user.ErrEmailTaken
			case "weak@example.com":
				return nil, user.ErrWeakPassword
			}
			return &user.User{ID: uuid.New(), Email: req.Email}, nil
		},
	}
	e := newTestServer(t, httpserver.ServerDeps{UserService: users})

	rec := do(e, http.MethodPost, "/api/v1/auth/signup", `{"email":"new@example.com","password":"hunter22a"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "new@example.com", decode(t, rec)["email"])
	require.NotContains(t, rec.Body.String(), "password")

	rec = do(e, http.MethodPost, "/api/v1/auth/signup", `{"email":"taken@example.com","password":"hunter22a"}`, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPost, "/api/v1/auth/signup", `{"email":"weak@example.com","password":"x"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/api/v1/auth/signup", `{"email":"not-an-email","password":"hunter22a"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "email must be a valid email address")
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	authMock := sessionAuth()
	authMock.LoginFn = func(ctx context.Context, req *auth.LoginRequest) (*auth.Session, error) {
		switch req.Password {
		case "hunter22a":
			return &auth.Session{AccessToken: goodToken, ExpiresAt: expires, User: &user.User{Email: req.Email}}, nil
		case "unverified1":
			return nil, user.ErrEmailNotVerified
		}
		return nil, user.ErrInvalidCredentials
	}
	e := newTestServer(t, httpserver.ServerDeps{AuthService: authMock})

	rec := do(e, http.MethodPost, "/api/v1/auth/login", `{"email":"reader@example.com","password":"hunter22a"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, goodToken, decode(t, rec)["access_token"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, auth.SessionCookieName, cookies[0].Name)
	require.Equal(t, goodToken, cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	rec = do(e, http.MethodPost, "/api/v1/auth/login", `{"email":"reader@example.com","password":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/api/v1/auth/login", `{"email":"reader@example.com","password":"unverified1"}`, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	e := newTestServer(t, httpserver.ServerDeps{})

	rec := do(e, http.MethodGet, "/api/v1/home", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/home", "", map[string]string{echo.HeaderAuthorization: "Bearer nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/home", "", map[string]string{echo.HeaderAuthorization: "Token " + goodToken})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionCookieAuthenticates(t *testing.T) {
	users := &tmocks.UserServiceMock{
		GetUserFn: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			return &user.User{ID: id, Email: "reader@example.com"}, nil
		},
	}
	e := newTestServer(t, httpserver.ServerDeps{UserService: users})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: goodToken})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, testUserID.String(), decode(t, rec)["id"])
}

func TestLogout_RevokesAndClearsCookie(t *testing.T) {
	authMock := sessionAuth()
	var revoked string
	authMock.LogoutFn = func(ctx context.Context, token string) error { revoked = token; return nil }
	e := newTestServer(t, httpserver.ServerDeps{AuthService: authMock})

	rec := do(e, http.MethodPost, "/api/v1/auth/logout", "", bearer())
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, goodToken, revoked)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestVerifyEmail(t *testing.T) {
	users := &tmocks.UserServiceMock{
		VerifyEmailFn: func(ctx context.Context, token string) (*user.User, error) {
			if token == "valid" {
				return &user.User{EmailVerified: true}, nil
			}
			return nil, user.ErrInvalidToken
		},
	}
	e := newTestServer(t, httpserver.ServerDeps{UserService: users})

	rec := do(e, http.MethodGet, "/api/v1/auth/verify-email?token=valid", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["verified"])

	rec = do(e, http.MethodPost, "/api/v1/auth/verify-email", `{"token":"valid"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/auth/verify-email?token=stale", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/auth/verify-email", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResendVerification_DoesNotRevealAccounts(t *testing.T) {
	users := &tmocks.UserServiceMock{
		ResendVerificationEmailFn: func(ctx context.Context, email string) error {
			switch email {
			case "nobody@example.com":
				return user.ErrUserNotFound
			case "done@example.com":
				return user.ErrAlreadyVerified
			}
			return nil
		},
	}
	e := newTestServer(t, httpserver.ServerDeps{UserService: users})

	known := do(e, http.MethodPost, "/api/v1/auth/resend-verification", `{"email":"pending@example.com"}`, nil)
	unknown := do(e, http.MethodPost, "/api/v1/auth/resend-verification", `{"email":"nobody@example.com"}`, nil)
	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, known.Code, unknown.Code)
	require.Equal(t, known.Body.String(), unknown.Body.String())

	rec := do(e, http.MethodPost, "/api/v1/auth/resend-verification", `{"email":"done@example.com"}`, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHome_PassesPrincipalAndFilter(t *testing.T) {
	var got auth.Principal
	var gotFilter string
	home := &tmocks.HomeServiceMock{
		HomeFn: func(ctx context.Context, p auth.Principal, filter string) (*library.HomePage, error) {
			got, gotFilter = p, filter
			return &library.HomePage{Filter: filter}, nil
		},
	}
	e := newTestServer(t, httpserver.ServerDeps{HomeService: home})

	rec := do(e, http.MethodGet, "/api/v1/home?filter=week", "", bearer())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, testUserID, got.UserID)
	require.Equal(t, "reader@example.com", got.Email)
	require.Equal(t, "week", gotFilter)
	require.Equal(t, "week", decode(t, rec)["filter"])
}

func TestHome_FailureIs500(t *testing.T) {
	home := &tmocks.HomeServiceMock{
		HomeFn: func(ctx context.Context, p auth.Principal, filter string) (*library.HomePage, error) {
			return nil, errors.New("db down")
		},
	}
	e := newTestServer(t, httpserver.ServerDeps{HomeService: home})
	rec := do(e, http.MethodGet, "/api/v1/home", "", bearer())
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestClearHomeLists(t *testing.T) {
	var history, viewed uuid.UUID
	home := &tmocks.HomeServiceMock{
		ClearSearchHistoryFn:  func(ctx context.Context, id uuid.UUID) error { history = id; return nil },
		ClearRecentlyViewedFn: func(ctx context.Context, id uuid.UUID) error { viewed = id; return nil },
	}
	e := newTestServer(t, httpserver.ServerDeps{HomeService: home})

	require.Equal(t, http.StatusNoContent, do(e, http.MethodDelete, "/api/v1/home/search-history", "", bearer()).Code)
	require.Equal(t, http.StatusNoContent, do(e, http.MethodDelete, "/api/v1/home/recently-viewed", "", bearer()).Code)
	require.Equal(t, testUserID, history)
	require.Equal(t, testUserID, viewed)
}

func TestRefreshCache(t *testing.T) {
	home := &tmocks.HomeServiceMock{
		RefreshGlobalCachesFn: func(ctx context.Context, token string) (map[string]int, error) {
			switch token {
			case "admin":
				return map[string]int{"month": 12, "top": 12, "featured": 12}, nil
			case "admin-partial":
				return map[string]int{"month": 12, "top": 0, "featured": 12}, &contentcache.StorageError{Op: "write", SubjectKey: "top", Err: errors.New("disk full")}
			}
			return nil, contentcache.ErrUnauthorized
		},
	}
	e := newTestServer(t, httpserver.ServerDeps{HomeService: home})

	rec := do(e, http.MethodPost, "/api/v1/admin/refresh-cache", "", map[string]string{httpserver.AdminTokenHeader: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/api/v1/admin/refresh-cache", "", map[string]string{httpserver.AdminTokenHeader: "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, float64(12), body["counts"].(map[string]interface{})["featured"])

	rec = do(e, http.MethodPost, "/api/v1/admin/refresh-cache?token=admin-partial", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	require.Equal(t, "partial", body["status"])
	require.Contains(t, body["error"], "disk full")
}

func TestBooks(t *testing.T) {
	books := &tmocks.BookServiceMock{}
	var gotQ, gotFilter string
	books.SearchFn = func(ctx context.Context, userID uuid.UUID, q, filter string) (*library.SearchResult, error) {
		gotQ, gotFilter = q, filter
		return &library.SearchResult{Query: q, Filter: filter}, nil
	}
	e := newTestServer(t, httpserver.ServerDeps{BookService: books})

	rec := do(e, http.MethodGet, "/api/v1/books/search?q=dune&filter=intitle", "", bearer())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "dune", gotQ)
	require.Equal(t, "intitle", gotFilter)

	rec = do(e, http.MethodGet, "/api/v1/books/unknown", "", bearer())
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBook_CatalogOutageIs503(t *testing.T) {
	books := &tmocks.BookServiceMock{
		GetBookFn: func(ctx context.Context, userID uuid.UUID, bookID string) (*library.BookDetail, error) {
			return nil, fmt.Errorf("%w: upstream 502", library.ErrCatalogUnavailable)
		},
	}
	e := newTestServer(t, httpserver.ServerDeps{BookService: books})

	rec := do(e, http.MethodGet, "/api/v1/books/b1", "", bearer())
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFavorites(t *testing.T) {
	favs := &tmocks.FavoriteServiceMock{
		ListFn: func(ctx context.Context, userID uuid.UUID) ([]*library.Favorite, error) {
			return []*library.Favorite{{BookID: "a"}, {BookID: "b"}}, nil
		},
	}
	var removed string
	favs.RemoveFn = func(ctx context.Context, userID uuid.UUID, bookID string) error { removed = bookID; return nil }
	e := newTestServer(t, httpserver.ServerDeps{FavoriteService: favs})

	rec := do(e, http.MethodGet, "/api/v1/favorites", "", bearer())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(2), decode(t, rec)["count"])

	rec = do(e, http.MethodPost, "/api/v1/favorites", `{"book_id":"b1","title":"Dune"}`, bearer())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "b1", decode(t, rec)["book_id"])

	rec = do(e, http.MethodPost, "/api/v1/favorites", `{"book_id":"b1"}`, bearer())
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/api/v1/favorites/b1", "", bearer())
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "b1", removed)
}

func TestShelves(t *testing.T) {
	known := uuid.New()
	shelves := &tmocks.ShelfServiceMock{
		ViewFn: func(ctx context.Context, userID, shelfID uuid.UUID) (*library.ShelfDetail, error) {
			if shelfID != known {
				return nil, library.ErrShelfNotFound
			}
			return &library.ShelfDetail{Shelf: &library.Shelf{ID: known, Name: "To Read"}, Books: []*library.ShelfBook{}}, nil
		},
	}
	e := newTestServer(t, httpserver.ServerDeps{ShelfService: shelves})

	rec := do(e, http.MethodGet, "/api/v1/shelves/"+known.String(), "", bearer())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/shelves/"+uuid.NewString(), "", bearer())
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/shelves/not-a-uuid", "", bearer())
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/api/v1/shelves", `{"name":"Classics"}`, bearer())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Classics", decode(t, rec)["name"])

	rec = do(e, http.MethodPost, "/api/v1/shelves/"+known.String()+"/books", `{"book_id":"b1","title":"Dune","thumbnail":"not a url"}`, bearer())
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/api/v1/shelves/"+known.String()+"/books/b1", "", bearer())
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimitChargesUserOnProtectedRoutes(t *testing.T) {
	var subjects []string
	limiter := &tmocks.RateLimiterServiceMock{
		AllowFn: func(ctx context.Context, subject string) (bool, int, int, time.Time, error) {
			subjects = append(subjects, subject)
			return false, 0, 10, time.Unix(1700000000, 0), nil
		},
	}
	e := newTestServer(t, httpserver.ServerDeps{RateLimiterService: limiter})

	rec := do(e, http.MethodGet, "/api/v1/favorites", "", bearer())
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, "1700000000", rec.Header().Get("X-RateLimit-Reset"))

	rec = do(e, http.MethodPost, "/api/v1/auth/login", `{"email":"a@example.com","password":"x"}`, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	require.Equal(t, []string{"user:" + testUserID.String(), "ip:192.0.2.1"}, subjects)
}

func TestRateLimitFailsOpen(t *testing.T) {
	limiter := &tmocks.RateLimiterServiceMock{
		AllowFn: func(ctx context.Context, subject string) (bool, int, int, time.Time, error) {
			return false, 0, 0, time.Time{}, errors.New("redis down")
		},
	}
	e := newTestServer(t, httpserver.ServerDeps{RateLimiterService: limiter})
	rec := do(e, http.MethodGet, "/api/v1/favorites", "", bearer())
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name     string
		checkers []ports.HealthChecker
		code     int
		status   string
	}{
		{"healthy", []ports.HealthChecker{&tmocks.HealthCheckerMock{NameValue: "database"}, &tmocks.HealthCheckerMock{NameValue: "catalog"}}, http.StatusOK, "healthy"},
		{"catalog breaker open", []ports.HealthChecker{&tmocks.HealthCheckerMock{NameValue: "database"}, &tmocks.HealthCheckerMock{NameValue: "catalog", Err: errors.New("open")}}, http.StatusOK, "degraded"},
		{"database down", []ports.HealthChecker{&tmocks.HealthCheckerMock{NameValue: "database", Err: errors.New("down")}, &tmocks.HealthCheckerMock{NameValue: "catalog", Err: errors.New("open")}}, http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestServer(t, httpserver.ServerDeps{HealthCheckers: tc.checkers})
			rec := do(e, http.MethodGet, "/health", "", nil)
			require.Equal(t, tc.code, rec.Code)
			require.Equal(t, tc.status, decode(t, rec)["status"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestServer(t, httpserver.ServerDeps{})
	_ = do(e, http.MethodGet, "/health", "", nil)

	rec := do(e, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "bookshelf_http_requests_total")
}
