package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avatarctic/bookshelf/internal/core/domain/auth"
	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
	"github.com/avatarctic/bookshelf/internal/core/domain/contentcache"
	"github.com/avatarctic/bookshelf/internal/core/domain/library"
	"github.com/avatarctic/bookshelf/internal/core/domain/user"
	"github.com/avatarctic/bookshelf/internal/core/ports"
)

// UserRepository mock
type UserRepositoryMock struct {
	CreateFn     func(ctx context.Context, u *user.User) error
	GetByEmailFn func(ctx context.Context, email string) (*user.User, error)
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdateFn     func(ctx context.Context, u *user.User) error
}

func (m *UserRepositoryMock) Create(ctx context.Context, u *user.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}
func (m *UserRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, user.ErrUserNotFound
}
func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, user.ErrUserNotFound
}
func (m *UserRepositoryMock) Update(ctx context.Context, u *user.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, u)
	}
	return nil
}

// EmailTokenRepositoryMock implements ports.EmailTokenRepository
type EmailTokenRepositoryMock struct {
	CreateFn     func(ctx context.Context, t *user.EmailToken) error
	GetFn        func(ctx context.Context, token string) (*user.EmailToken, error)
	MarkAsUsedFn func(ctx context.Context, id uuid.UUID) error
}

func (m *EmailTokenRepositoryMock) Create(ctx context.Context, t *user.EmailToken) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}
func (m *EmailTokenRepositoryMock) Get(ctx context.Context, token string) (*user.EmailToken, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, token)
	}
	return nil, user.ErrInvalidToken
}
func (m *EmailTokenRepositoryMock) MarkAsUsed(ctx context.Context, id uuid.UUID) error {
	if m.MarkAsUsedFn != nil {
		return m.MarkAsUsedFn(ctx, id)
	}
	return nil
}

// EmailServiceMock implements ports.EmailService
type EmailServiceMock struct {
	SendVerificationEmailFn func(ctx context.Context, email, token string) error
}

func (m *EmailServiceMock) SendVerificationEmail(ctx context.Context, email, token string) error {
	if m.SendVerificationEmailFn != nil {
		return m.SendVerificationEmailFn(ctx, email, token)
	}
	return nil
}

// TokenBlacklistMock implements ports.TokenBlacklist
type TokenBlacklistMock struct {
	RevokeFn    func(ctx context.Context, tokenHash string, expiresAt time.Time) error
	IsRevokedFn func(ctx context.Context, tokenHash string) (bool, error)
}

func (m *TokenBlacklistMock) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, tokenHash, expiresAt)
	}
	return nil
}
func (m *TokenBlacklistMock) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	if m.IsRevokedFn != nil {
		return m.IsRevokedFn(ctx, tokenHash)
	}
	return false, nil
}

// UserServiceMock is a lightweight mock implementing ports.UserService
type UserServiceMock struct {
	SignupFn                  func(ctx context.Context, req *user.SignupRequest) (*user.User, error)
	GetUserFn                 func(ctx context.Context, id uuid.UUID) (*user.User, error)
	SendVerificationEmailFn   func(ctx context.Context, userID uuid.UUID) error
	VerifyEmailFn             func(ctx context.Context, token string) (*user.User, error)
	ResendVerificationEmailFn func(ctx context.Context, email string) error
}

func (m *UserServiceMock) Signup(ctx context.Context, req *user.SignupRequest) (*user.User, error) {
	if m.SignupFn != nil {
		return m.SignupFn(ctx, req)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *UserServiceMock) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, id)
	}
	return nil, user.ErrUserNotFound
}
func (m *UserServiceMock) SendVerificationEmail(ctx context.Context, userID uuid.UUID) error {
	if m.SendVerificationEmailFn != nil {
		return m.SendVerificationEmailFn(ctx, userID)
	}
	return nil
}
func (m *UserServiceMock) VerifyEmail(ctx context.Context, token string) (*user.User, error) {
	if m.VerifyEmailFn != nil {
		return m.VerifyEmailFn(ctx, token)
	}
	return nil, user.ErrInvalidToken
}
func (m *UserServiceMock) ResendVerificationEmail(ctx context.Context, email string) error {
	if m.ResendVerificationEmailFn != nil {
		return m.ResendVerificationEmailFn(ctx, email)
	}
	return nil
}

// AuthService mock
type AuthServiceMock struct {
	LoginFn         func(ctx context.Context, req *auth.LoginRequest) (*auth.Session, error)
	ValidateTokenFn func(ctx context.Context, token string) (*auth.Claims, error)
	LogoutFn        func(ctx context.Context, token string) error
	IssueTokenFn    func(ctx context.Context, u *user.User) (*auth.Session, error)
	GetTokenHashFn  func(token string) string
}

func (m *AuthServiceMock) Login(ctx context.Context, req *auth.LoginRequest) (*auth.Session, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, req)
	}
	return nil, user.ErrInvalidCredentials
}
func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	return nil, fmt.Errorf("invalid token")
}
func (m *AuthServiceMock) Logout(ctx context.Context, token string) error {
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx, token)
	}
	return nil
}
func (m *AuthServiceMock) IssueToken(ctx context.Context, u *user.User) (*auth.Session, error) {
	if m.IssueTokenFn != nil {
		return m.IssueTokenFn(ctx, u)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *AuthServiceMock) GetTokenHash(token string) string {
	if m.GetTokenHashFn != nil {
		return m.GetTokenHashFn(token)
	}
	return "hash-" + token
}

// RateLimiterServiceMock implements ports.RateLimiterService
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, subject string) (bool, int, int, time.Time, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, subject string) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, subject)
	}
	return true, 100, 100, time.Now().Add(time.Minute), nil
}

// RateLimitRepositoryMock implements ports.RateLimitRepository
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, subject string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, subject string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, subject, window, keyPrefix, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}

// CatalogClientMock implements ports.CatalogClient
type CatalogClientMock struct {
	SearchFn     func(ctx context.Context, query string, maxResults int) ([]catalog.Item, error)
	LookupBookFn func(ctx context.Context, bookID string) (*catalog.Item, error)

	mu      sync.Mutex
	queries []string
}

func (m *CatalogClientMock) Search(ctx context.Context, query string, maxResults int) ([]catalog.Item, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, maxResults)
	}
	return []catalog.Item{}, nil
}
func (m *CatalogClientMock) LookupBook(ctx context.Context, bookID string) (*catalog.Item, error) {
	if m.LookupBookFn != nil {
		return m.LookupBookFn(ctx, bookID)
	}
	return nil, catalog.ErrNotFound
}

// Queries returns every search query received so far.
func (m *CatalogClientMock) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// CacheMock is an in-memory ports.Cache
type CacheMock struct {
	mu      sync.Mutex
	entries map[string][]byte
	GetErr  error
	SetErr  error
}

func (m *CacheMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}
func (m *CacheMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = value
	return nil
}
func (m *CacheMock) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// ContentCacheRepositoryMock is an in-memory durable tier with failure injection
type ContentCacheRepositoryMock struct {
	GetErr        error
	UpsertErr     error
	InvalidateErr error

	mu          sync.Mutex
	entries     map[string]*contentcache.Entry
	upserts     int
	invalidates int
}

func (m *ContentCacheRepositoryMock) Get(ctx context.Context, subjectKey string) (*contentcache.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	e, ok := m.entries[subjectKey]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}
func (m *ContentCacheRepositoryMock) Upsert(ctx context.Context, entry *contentcache.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.put(entry)
	return nil
}
func (m *ContentCacheRepositoryMock) MarkInvalidated(ctx context.Context, subjectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidates++
	if m.InvalidateErr != nil {
		return m.InvalidateErr
	}
	if e, ok := m.entries[subjectKey]; ok {
		cp := *e
		cp.Invalidated = true
		m.entries[subjectKey] = &cp
	}
	return nil
}

// Seed stores an entry directly, bypassing failure injection.
func (m *ContentCacheRepositoryMock) Seed(entry *contentcache.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(entry)
}

func (m *ContentCacheRepositoryMock) put(entry *contentcache.Entry) {
	if m.entries == nil {
		m.entries = make(map[string]*contentcache.Entry)
	}
	cp := *entry
	m.entries[entry.SubjectKey] = &cp
}

// Stored returns the durable entry for key, or nil.
func (m *ContentCacheRepositoryMock) Stored(key string) *contentcache.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key]
}

func (m *ContentCacheRepositoryMock) Upserts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

func (m *ContentCacheRepositoryMock) Invalidates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invalidates
}

// FavoriteRepositoryMock implements ports.FavoriteRepository
type FavoriteRepositoryMock struct {
	ListByUserFn func(ctx context.Context, userID uuid.UUID, limit int) ([]*library.Favorite, error)
	GetFn        func(ctx context.Context, userID uuid.UUID, bookID string) (*library.Favorite, error)
	CreateFn     func(ctx context.Context, fav *library.Favorite) error
	DeleteFn     func(ctx context.Context, userID uuid.UUID, bookID string) error
}

func (m *FavoriteRepositoryMock) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*library.Favorite, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, limit)
	}
	return []*library.Favorite{}, nil
}
func (m *FavoriteRepositoryMock) Get(ctx context.Context, userID uuid.UUID, bookID string) (*library.Favorite, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, bookID)
	}
	return nil, nil
}
func (m *FavoriteRepositoryMock) Create(ctx context.Context, fav *library.Favorite) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, fav)
	}
	return nil
}
func (m *FavoriteRepositoryMock) Delete(ctx context.Context, userID uuid.UUID, bookID string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, bookID)
	}
	return nil
}

// ShelfRepositoryMock implements ports.ShelfRepository
type ShelfRepositoryMock struct {
	ListByUserFn        func(ctx context.Context, userID uuid.UUID, limit int) ([]*library.Shelf, error)
	GetByIDFn           func(ctx context.Context, userID, shelfID uuid.UUID) (*library.Shelf, error)
	GetByNameFn         func(ctx context.Context, userID uuid.UUID, name string) (*library.Shelf, error)
	CreateFn            func(ctx context.Context, shelf *library.Shelf) error
	DeleteFn            func(ctx context.Context, userID, shelfID uuid.UUID) error
	ListBooksFn         func(ctx context.Context, shelfID uuid.UUID) ([]*library.ShelfBook, error)
	GetBookFn           func(ctx context.Context, shelfID uuid.UUID, bookID string) (*library.ShelfBook, error)
	AddBookFn           func(ctx context.Context, book *library.ShelfBook) error
	RemoveBookFn        func(ctx context.Context, shelfID uuid.UUID, bookID string) error
	ShelvesContainingFn func(ctx context.Context, userID uuid.UUID, bookID string) ([]uuid.UUID, error)
}

func (m *ShelfRepositoryMock) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*library.Shelf, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, limit)
	}
	return []*library.Shelf{}, nil
}
func (m *ShelfRepositoryMock) GetByID(ctx context.Context, userID, shelfID uuid.UUID) (*library.Shelf, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, userID, shelfID)
	}
	return nil, library.ErrShelfNotFound
}
func (m *ShelfRepositoryMock) GetByName(ctx context.Context, userID uuid.UUID, name string) (*library.Shelf, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, userID, name)
	}
	return nil, nil
}
func (m *ShelfRepositoryMock) Create(ctx context.Context, shelf *library.Shelf) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, shelf)
	}
	return nil
}
func (m *ShelfRepositoryMock) Delete(ctx context.Context, userID, shelfID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, shelfID)
	}
	return nil
}
func (m *ShelfRepositoryMock) ListBooks(ctx context.Context, shelfID uuid.UUID) ([]*library.ShelfBook, error) {
	if m.ListBooksFn != nil {
		return m.ListBooksFn(ctx, shelfID)
	}
	return []*library.ShelfBook{}, nil
}
func (m *ShelfRepositoryMock) GetBook(ctx context.Context, shelfID uuid.UUID, bookID string) (*library.ShelfBook, error) {
	if m.GetBookFn != nil {
		return m.GetBookFn(ctx, shelfID, bookID)
	}
	return nil, nil
}
func (m *ShelfRepositoryMock) AddBook(ctx context.Context, book *library.ShelfBook) error {
	if m.AddBookFn != nil {
		return m.AddBookFn(ctx, book)
	}
	return nil
}
func (m *ShelfRepositoryMock) RemoveBook(ctx context.Context, shelfID uuid.UUID, bookID string) error {
	if m.RemoveBookFn != nil {
		return m.RemoveBookFn(ctx, shelfID, bookID)
	}
	return nil
}
func (m *ShelfRepositoryMock) ShelvesContaining(ctx context.Context, userID uuid.UUID, bookID string) ([]uuid.UUID, error) {
	if m.ShelvesContainingFn != nil {
		return m.ShelvesContainingFn(ctx, userID, bookID)
	}
	return []uuid.UUID{}, nil
}

// SearchHistoryRepositoryMock implements ports.SearchHistoryRepository
type SearchHistoryRepositoryMock struct {
	RecordFn func(ctx context.Context, userID uuid.UUID, query string) error
	RecentFn func(ctx context.Context, userID uuid.UUID, limit int) ([]*library.SearchHistoryEntry, error)
	ClearFn  func(ctx context.Context, userID uuid.UUID) error
}

func (m *SearchHistoryRepositoryMock) Record(ctx context.Context, userID uuid.UUID, query string) error {
	if m.RecordFn != nil {
		return m.RecordFn(ctx, userID, query)
	}
	return nil
}
func (m *SearchHistoryRepositoryMock) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*library.SearchHistoryEntry, error) {
	if m.RecentFn != nil {
		return m.RecentFn(ctx, userID, limit)
	}
	return []*library.SearchHistoryEntry{}, nil
}
func (m *SearchHistoryRepositoryMock) Clear(ctx context.Context, userID uuid.UUID) error {
	if m.ClearFn != nil {
		return m.ClearFn(ctx, userID)
	}
	return nil
}

// RecentlyViewedRepositoryMock implements ports.RecentlyViewedRepository
type RecentlyViewedRepositoryMock struct {
	RecordFn func(ctx context.Context, view *library.RecentlyViewed) error
	RecentFn func(ctx context.Context, userID uuid.UUID, limit int) ([]*library.RecentlyViewed, error)
	ClearFn  func(ctx context.Context, userID uuid.UUID) error
}

func (m *RecentlyViewedRepositoryMock) Record(ctx context.Context, view *library.RecentlyViewed) error {
	if m.RecordFn != nil {
		return m.RecordFn(ctx, view)
	}
	return nil
}
func (m *RecentlyViewedRepositoryMock) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*library.RecentlyViewed, error) {
	if m.RecentFn != nil {
		return m.RecentFn(ctx, userID, limit)
	}
	return []*library.RecentlyViewed{}, nil
}
func (m *RecentlyViewedRepositoryMock) Clear(ctx context.Context, userID uuid.UUID) error {
	if m.ClearFn != nil {
		return m.ClearFn(ctx, userID)
	}
	return nil
}

// BookServiceMock implements ports.BookService
type BookServiceMock struct {
	SearchFn  func(ctx context.Context, userID uuid.UUID, q, filter string) (*library.SearchResult, error)
	GetBookFn func(ctx context.Context, userID uuid.UUID, bookID string) (*library.BookDetail, error)
}

func (m *BookServiceMock) Search(ctx context.Context, userID uuid.UUID, q, filter string) (*library.SearchResult, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, userID, q, filter)
	}
	return &library.SearchResult{Query: q, Filter: filter, Books: []catalog.Item{}, History: []library.SearchLabel{}}, nil
}
func (m *BookServiceMock) GetBook(ctx context.Context, userID uuid.UUID, bookID string) (*library.BookDetail, error) {
	if m.GetBookFn != nil {
		return m.GetBookFn(ctx, userID, bookID)
	}
	return nil, library.ErrBookNotFound
}

// FavoriteServiceMock implements ports.FavoriteService
type FavoriteServiceMock struct {
	ListFn   func(ctx context.Context, userID uuid.UUID) ([]*library.Favorite, error)
	AddFn    func(ctx context.Context, userID uuid.UUID, req *library.AddFavoriteRequest) (*library.Favorite, error)
	RemoveFn func(ctx context.Context, userID uuid.UUID, bookID string) error
}

func (m *FavoriteServiceMock) List(ctx context.Context, userID uuid.UUID) ([]*library.Favorite, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID)
	}
	return []*library.Favorite{}, nil
}
func (m *FavoriteServiceMock) Add(ctx context.Context, userID uuid.UUID, req *library.AddFavoriteRequest) (*library.Favorite, error) {
	if m.AddFn != nil {
		return m.AddFn(ctx, userID, req)
	}
	return &library.Favorite{ID: uuid.New(), UserID: userID, BookID: req.BookID, Title: req.Title}, nil
}
func (m *FavoriteServiceMock) Remove(ctx context.Context, userID uuid.UUID, bookID string) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, userID, bookID)
	}
	return nil
}

// ShelfServiceMock implements ports.ShelfService
type ShelfServiceMock struct {
	ListFn       func(ctx context.Context, userID uuid.UUID) ([]*library.Shelf, error)
	CreateFn     func(ctx context.Context, userID uuid.UUID, req *library.CreateShelfRequest) (*library.Shelf, error)
	DeleteFn     func(ctx context.Context, userID, shelfID uuid.UUID) error
	ViewFn       func(ctx context.Context, userID, shelfID uuid.UUID) (*library.ShelfDetail, error)
	AddBookFn    func(ctx context.Context, userID, shelfID uuid.UUID, req *library.AddShelfBookRequest) (*library.ShelfBook, error)
	RemoveBookFn func(ctx context.Context, userID, shelfID uuid.UUID, bookID string) error
}

func (m *ShelfServiceMock) List(ctx context.Context, userID uuid.UUID) ([]*library.Shelf, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID)
	}
	return []*library.Shelf{}, nil
}
func (m *ShelfServiceMock) Create(ctx context.Context, userID uuid.UUID, req *library.CreateShelfRequest) (*library.Shelf, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, userID, req)
	}
	return &library.Shelf{ID: uuid.New(), UserID: userID, Name: req.Name}, nil
}
func (m *ShelfServiceMock) Delete(ctx context.Context, userID, shelfID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, shelfID)
	}
	return nil
}
func (m *ShelfServiceMock) View(ctx context.Context, userID, shelfID uuid.UUID) (*library.ShelfDetail, error) {
	if m.ViewFn != nil {
		return m.ViewFn(ctx, userID, shelfID)
	}
	return nil, library.ErrShelfNotFound
}
func (m *ShelfServiceMock) AddBook(ctx context.Context, userID, shelfID uuid.UUID, req *library.AddShelfBookRequest) (*library.ShelfBook, error) {
	if m.AddBookFn != nil {
		return m.AddBookFn(ctx, userID, shelfID, req)
	}
	return nil, library.ErrShelfNotFound
}
func (m *ShelfServiceMock) RemoveBook(ctx context.Context, userID, shelfID uuid.UUID, bookID string) error {
	if m.RemoveBookFn != nil {
		return m.RemoveBookFn(ctx, userID, shelfID, bookID)
	}
	return nil
}

// HomeServiceMock implements ports.HomeService
type HomeServiceMock struct {
	HomeFn                func(ctx context.Context, principal auth.Principal, filter string) (*library.HomePage, error)
	RefreshGlobalCachesFn func(ctx context.Context, token string) (map[string]int, error)
	ClearRecentlyViewedFn func(ctx context.Context, userID uuid.UUID) error
	ClearSearchHistoryFn  func(ctx context.Context, userID uuid.UUID) error
}

func (m *HomeServiceMock) Home(ctx context.Context, principal auth.Principal, filter string) (*library.HomePage, error) {
	if m.HomeFn != nil {
		return m.HomeFn(ctx, principal, filter)
	}
	return &library.HomePage{Filter: filter}, nil
}
func (m *HomeServiceMock) RefreshGlobalCaches(ctx context.Context, token string) (map[string]int, error) {
	if m.RefreshGlobalCachesFn != nil {
		return m.RefreshGlobalCachesFn(ctx, token)
	}
	return nil, contentcache.ErrUnauthorized
}
func (m *HomeServiceMock) ClearRecentlyViewed(ctx context.Context, userID uuid.UUID) error {
	if m.ClearRecentlyViewedFn != nil {
		return m.ClearRecentlyViewedFn(ctx, userID)
	}
	return nil
}
func (m *HomeServiceMock) ClearSearchHistory(ctx context.Context, userID uuid.UUID) error {
	if m.ClearSearchHistoryFn != nil {
		return m.ClearSearchHistoryFn(ctx, userID)
	}
	return nil
}

// HealthCheckerMock implements ports.HealthChecker
type HealthCheckerMock struct {
	NameValue string
	Err       error
}

func (m *HealthCheckerMock) Name() string { return m.NameValue }
func (m *HealthCheckerMock) Check(context.Context) error { return m.Err }

var (
	_ ports.UserRepository           = (*UserRepositoryMock)(nil)
	_ ports.EmailTokenRepository     = (*EmailTokenRepositoryMock)(nil)
	_ ports.EmailService             = (*EmailServiceMock)(nil)
	_ ports.TokenBlacklist           = (*TokenBlacklistMock)(nil)
	_ ports.UserService              = (*UserServiceMock)(nil)
	_ ports.AuthService              = (*AuthServiceMock)(nil)
	_ ports.RateLimiterService       = (*RateLimiterServiceMock)(nil)
	_ ports.RateLimitRepository      = (*RateLimitRepositoryMock)(nil)
	_ ports.CatalogClient            = (*CatalogClientMock)(nil)
	_ ports.Cache                    = (*CacheMock)(nil)
	_ ports.ContentCacheRepository   = (*ContentCacheRepositoryMock)(nil)
	_ ports.FavoriteRepository       = (*FavoriteRepositoryMock)(nil)
	_ ports.ShelfRepository          = (*ShelfRepositoryMock)(nil)
	_ ports.SearchHistoryRepository  = (*SearchHistoryRepositoryMock)(nil)
	_ ports.RecentlyViewedRepository = (*RecentlyViewedRepositoryMock)(nil)
	_ ports.BookService              = (*BookServiceMock)(nil)
	_ ports.FavoriteService          = (*FavoriteServiceMock)(nil)
	_ ports.ShelfService             = (*ShelfServiceMock)(nil)
	_ ports.HomeService              = (*HomeServiceMock)(nil)
	_ ports.HealthChecker            = (*HealthCheckerMock)(nil)
)
