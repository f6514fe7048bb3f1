package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/avatarctic/bookshelf/internal/core/domain/auth"
	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
	"github.com/avatarctic/bookshelf/internal/core/domain/contentcache"
	"github.com/avatarctic/bookshelf/internal/core/domain/library"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultCarouselKey = "trending"
	FeaturedKey        = "featured"

	homeFavoritesLimit      = 5
	homeShelvesLimit        = 5
	homeHistoryLimit        = 10
	homeRecentlyViewedLimit = 5
	recommendationGenres    = 3
)

// globalQueries maps a carousel key to the catalog query that fills it.
var globalQueries = map[string]string{
	"week":             "trending books this week",
	"month":            "bestsellers this month",
	"top":              "top rated books",
	"new":              "new book releases",
	DefaultCarouselKey: "trending books",
	FeaturedKey:        "best books of 2024",
}

// RefreshKeys are the global feeds rebuilt by RefreshGlobalCaches.
var RefreshKeys = []string{"month", "top", FeaturedKey}

// HomeConfig groups configuration parameters for the home feed.
type HomeConfig struct {
	GlobalTTL       time.Duration
	PersonalTTL     time.Duration
	SubQueryTimeout time.Duration
	CarouselSize    int
	AdminToken      string
}

type HomeService struct {
	favorites ports.FavoriteRepository
	shelves   ports.ShelfRepository
	history   ports.SearchHistoryRepository
	viewed    ports.RecentlyViewedRepository
	catalog   ports.CatalogClient
	cache     ports.ContentCache
	cfg       HomeConfig
	logger    *logrus.Logger
}

type HomeDeps struct {
	Favorites      ports.FavoriteRepository
	Shelves        ports.ShelfRepository
	SearchHistory  ports.SearchHistoryRepository
	RecentlyViewed ports.RecentlyViewedRepository
	Catalog        ports.CatalogClient
	Cache          ports.ContentCache
}

func NewHomeService(deps HomeDeps, cfg *HomeConfig, logger *logrus.Logger) *HomeService {
	c := HomeConfig{
		GlobalTTL:       6 * time.Hour,
		PersonalTTL:     6 * time.Hour,
		SubQueryTimeout: DefaultSubQueryTimeout,
		CarouselSize:    10,
	}
	if cfg != nil {
		if cfg.GlobalTTL > 0 {
			c.GlobalTTL = cfg.GlobalTTL
		}
		if cfg.PersonalTTL > 0 {
			c.PersonalTTL = cfg.PersonalTTL
		}
		if cfg.SubQueryTimeout > 0 {
			c.SubQueryTimeout = cfg.SubQueryTimeout
		}
		if cfg.CarouselSize > 0 {
			c.CarouselSize = cfg.CarouselSize
		}
		c.AdminToken = cfg.AdminToken
	}
	return &HomeService{
		favorites: deps.Favorites,
		shelves:   deps.Shelves,
		history:   deps.SearchHistory,
		viewed:    deps.RecentlyViewed,
		catalog:   deps.Catalog,
		cache:     deps.Cache,
		cfg:       c,
		logger:    logger,
	}
}

var _ ports.HomeService = (*HomeService)(nil)

// CarouselKey resolves a home filter to its cache key.
func CarouselKey(filter string) string {
	if _, ok := globalQueries[filter]; ok && filter != FeaturedKey {
		return filter
	}
	return DefaultCarouselKey
}

// PersonalKey is the cache key of a user's recommendations.
func PersonalKey(email string) string {
	return "user:" + email
}

func (s *HomeService) Home(ctx context.Context, principal auth.Principal, filter string) (*library.HomePage, error) {
	favorites, err := s.favorites.ListByUser(ctx, principal.UserID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	shelves, err := s.shelves.ListByUser(ctx, principal.UserID, homeShelvesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load shelves: %w", err)
	}
	history, err := s.history.Recent(ctx, principal.UserID, homeHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load search history: %w", err)
	}
	viewed, err := s.viewed.Recent(ctx, principal.UserID, homeRecentlyViewedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recently viewed: %w", err)
	}

	categories := make([]string, 0, len(favorites))
	for _, f := range favorites {
		if f.Categories != "" {
			categories = append(categories, f.Categories)
		}
	}
	genres := catalog.RankGenres(categories)

	carouselKey := CarouselKey(filter)
	carousel, err := s.globalFeed(ctx, carouselKey)
	if err != nil {
		return nil, err
	}
	featured, err := s.globalFeed(ctx, FeaturedKey)
	if err != nil {
		return nil, err
	}
	recommended, err := s.recommendations(ctx, principal.Email, catalog.TopGenreNames(genres, recommendationGenres))
	if err != nil {
		return nil, err
	}

	topFavorites := favorites
	if len(topFavorites) > homeFavoritesLimit {
		topFavorites = topFavorites[:homeFavoritesLimit]
	}

	return &library.HomePage{
		Filter:         filter,
		Favorites:      topFavorites,
		Shelves:        shelves,
		SearchHistory:  library.LabelHistory(history),
		RecentlyViewed: library.DedupeViewed(viewed),
		Genres:         genres,
		Carousel:       carousel,
		Featured:       featured,
		Recommended:    recommended,
	}, nil
}

func (s *HomeService) globalFeed(ctx context.Context, key string) ([]catalog.Item, error) {
	items, err := s.cache.Get(ctx, key, nil, s.cfg.GlobalTTL, s.globalRebuild(key))
	return s.absorbStorageError(key, items, err)
}

func (s *HomeService) recommendations(ctx context.Context, email string, genres []string) ([]catalog.Item, error) {
	key := PersonalKey(email)
	queries := make([]string, 0, len(genres))
	for _, g := range genres {
		queries = append(queries, "subject:"+g)
	}
	rebuild := func(ctx context.Context) ([]catalog.Item, error) {
		return SearchAll(ctx, s.catalog, queries, s.cfg.CarouselSize, s.cfg.SubQueryTimeout, s.logger), nil
	}
	items, err := s.cache.Get(ctx, key, genres, s.cfg.PersonalTTL, rebuild)
	return s.absorbStorageError(key, items, err)
}

func (s *HomeService) globalRebuild(key string) ports.RebuildFunc {
	query := globalQueries[key]
	return func(ctx context.Context) ([]catalog.Item, error) {
		qctx, cancel := context.WithTimeout(ctx, s.cfg.SubQueryTimeout)
		defer cancel()
		return s.catalog.Search(qctx, query, s.cfg.CarouselSize)
	}
}

// absorbStorageError keeps a usable payload when only the durable tier failed.
func (s *HomeService) absorbStorageError(key string, items []catalog.Item, err error) ([]catalog.Item, error) {
	if items == nil {
		items = []catalog.Item{}
	}
	if err == nil {
		return items, nil
	}
	if errors.Is(err, contentcache.ErrStorage) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"subject_key": key}).WithError(err).Warn("home: serving feed despite cache storage failure")
		}
		return items, nil
	}
	return nil, fmt.Errorf("failed to load feed %q: %w", key, err)
}

// RefreshGlobalCaches forces a rebuild of the shared feeds and reports the
// resulting item count per key.
func (s *HomeService) RefreshGlobalCaches(ctx context.Context, token string) (map[string]int, error) {
	if s.cfg.AdminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
		if s.logger != nil {
			s.logger.Warn("home: rejected cache refresh with invalid token")
		}
		return nil, contentcache.ErrUnauthorized
	}

	counts := make(map[string]int, len(RefreshKeys))
	var errs []error
	for _, key := range RefreshKeys {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			errs = append(errs, err)
		}
		items, err := s.cache.Get(ctx, key, nil, s.cfg.GlobalTTL, s.globalRebuild(key))
		if err != nil {
			errs = append(errs, err)
		}
		counts[key] = len(items)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"counts": counts}).Info("home: global caches refreshed")
	}
	return counts, errors.Join(errs...)
}

func (s *HomeService) ClearRecentlyViewed(ctx context.Context, userID uuid.UUID) error {
	return s.viewed.Clear(ctx, userID)
}

func (s *HomeService) ClearSearchHistory(ctx context.Context, userID uuid.UUID) error {
	return s.history.Clear(ctx, userID)
}
