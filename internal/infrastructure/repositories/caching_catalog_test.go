package repositories_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
	"github.com/avatarctic/bookshelf/internal/infrastructure/repositories"
	"github.com/avatarctic/bookshelf/test/mocks"
)

func TestCachingCatalog_LookupIsCached(t *testing.T) {
	var lookups atomic.Int32
	inner := &mocks.CatalogClientMock{
		LookupBookFn: func(ctx context.Context, id string) (*catalog.Item, error) {
			lookups.Add(1)
			it := catalog.MustItem(`{"id":"b1","volumeInfo":{"title":"Dune","categories":["Fiction"]}}`)
			return &it, nil
		},
	}
	cache := &mocks.CacheMock{}
	c := repositories.NewCachingCatalog(inner, cache, time.Hour)

	first, err := c.LookupBook(context.Background(), "b1")
	require.NoError(t, err)
	second, err := c.LookupBook(context.Background(), "b1")
	require.NoError(t, err)

	require.EqualValues(t, 1, lookups.Load())
	require.Equal(t, first.Title(), second.Title())
	require.Equal(t, []string{"Fiction"}, second.Info().Categories)
}

func TestCachingCatalog_MissesAreNotCached(t *testing.T) {
	var lookups atomic.Int32
	inner := &mocks.CatalogClientMock{
		LookupBookFn: func(ctx context.Context, id string) (*catalog.Item, error) {
			lookups.Add(1)
			return nil, catalog.ErrNotFound
		},
	}
	c := repositories.NewCachingCatalog(inner, &mocks.CacheMock{}, time.Hour)

	for i := 0; i < 2; i++ {
		_, err := c.LookupBook(context.Background(), "nope")
		require.ErrorIs(t, err, catalog.ErrNotFound)
	}
	require.EqualValues(t, 2, lookups.Load())
}

func TestCachingCatalog_SearchPassesThrough(t *testing.T) {
	inner := &mocks.CatalogClientMock{}
	c := repositories.NewCachingCatalog(inner, nil, time.Hour)

	_, err := c.Search(context.Background(), "dune", 5)
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "dune", 5)
	require.NoError(t, err)
	require.Equal(t, []string{"dune", "dune"}, inner.Queries())
}
