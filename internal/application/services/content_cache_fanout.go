package services

import (
	"context"
	"slices"
	"time"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSubQueryTimeout bounds every catalog call made by SearchAll.
	DefaultSubQueryTimeout = 10 * time.Second
	maxParallelSubQueries  = 8
)

// SearchAll runs one catalog search per query in parallel and concatenates
// the results in query order, dropping repeated titles. A failed or slow
// query contributes nothing.
func SearchAll(ctx context.Context, client ports.CatalogClient, queries []string, maxResults int, perQuery time.Duration, logger *logrus.Logger) []catalog.Item {
	if perQuery <= 0 {
		perQuery = DefaultSubQueryTimeout
	}
	results := make([][]catalog.Item, len(queries))

	var g errgroup.Group
	g.SetLimit(maxParallelSubQueries)
	for i, q := range queries {
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(ctx, perQuery)
			defer cancel()
			items, err := client.Search(qctx, q, maxResults)
			if err != nil {
				if logger != nil {
					logger.WithFields(logrus.Fields{"query": q}).WithError(err).Warn("catalog sub-query failed")
				}
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	return catalog.DedupeByTitle(slices.Concat(results...))
}
