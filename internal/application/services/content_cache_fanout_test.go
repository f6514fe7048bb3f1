package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avatarctic/bookshelf/internal/application/services"
	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
	"github.com/avatarctic/bookshelf/test/mocks"
)

func TestSearchAll_KeepsQueryOrderAndDropsRepeatedTitles(t *testing.T) {
	client := &mocks.CatalogClientMock{
		SearchFn: func(ctx context.Context, query string, maxResults int) ([]catalog.Item, error) {
			switch query {
			case "subject:Fantasy":
				// finish last to show ordering does not follow completion
				time.Sleep(20 * time.Millisecond)
				return []catalog.Item{book("f1", "The Hobbit"), book("f2", "Earthsea")}, nil
			case "subject:Adventure":
				return []catalog.Item{book("a1", "the hobbit"), book("a2", "Treasure Island")}, nil
			}
			return nil, nil
		},
	}

	got := services.SearchAll(context.Background(), client, []string{"subject:Fantasy", "subject:Adventure"}, 10, time.Second, quietLogger())
	require.Equal(t, []string{"The Hobbit", "Earthsea", "Treasure Island"}, titles(got))
}

func TestSearchAll_FailedAndSlowQueriesContributeNothing(t *testing.T) {
	client := &mocks.CatalogClientMock{
		SearchFn: func(ctx context.Context, query string, maxResults int) ([]catalog.Item, error) {
			switch query {
			case "broken":
				return nil, errors.New("500")
			case "slow":
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return []catalog.Item{book("ok", "Fine Book")}, nil
		},
	}

	start := time.Now()
	got := services.SearchAll(context.Background(), client, []string{"broken", "slow", "fine"}, 10, 50*time.Millisecond, nil)
	require.Less(t, time.Since(start), time.Second)
	require.Equal(t, []string{"Fine Book"}, titles(got))
}

func TestSearchAll_NoQueries(t *testing.T) {
	got := services.SearchAll(context.Background(), &mocks.CatalogClientMock{}, nil, 10, time.Second, nil)
	require.Empty(t, got)
}
