package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/bookshelf/internal/core/domain/contentcache"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/avatarctic/bookshelf/internal/infrastructure/db"
)

type contentCacheRow struct {
	SubjectKey  string         `db:"subject_key"`
	Signature   pq.StringArray `db:"signature"`
	Payload     []byte         `db:"payload"`
	ItemCount   int            `db:"item_count"`
	Invalidated bool           `db:"invalidated"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// ContentCacheRepository is the Postgres durable tier of the content cache.
type ContentCacheRepository struct {
	db     *db.Database
	codec  *payloadCodec
	logger *logrus.Logger
}

func NewContentCacheRepository(database *db.Database, logger *logrus.Logger) (*ContentCacheRepository, error) {
	codec, err := newPayloadCodec()
	if err != nil {
		return nil, err
	}
	return &ContentCacheRepository{db: database, codec: codec, logger: logger}, nil
}

var _ ports.ContentCacheRepository = (*ContentCacheRepository)(nil)

// Get returns nil, nil when no row exists for subjectKey.
func (r *ContentCacheRepository) Get(ctx context.Context, subjectKey string) (*contentcache.Entry, error) {
	var row contentCacheRow
	query := `
		SELECT subject_key, signature, payload, item_count, invalidated, updated_at
		FROM content_cache
		WHERE subject_key = $1`

	if err := r.db.DB.GetContext(ctx, &row, query, subjectKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get content cache entry: %w", err)
	}

	items, err := r.codec.decode(row.Payload)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"subject_key": subjectKey}).WithError(err).Error("db: corrupt content cache payload")
		}
		return nil, err
	}
	if len(items) != row.ItemCount && r.logger != nil {
		r.logger.WithFields(logrus.Fields{"subject_key": subjectKey, "expected": row.ItemCount, "got": len(items)}).Warn("db: content cache item count mismatch")
	}

	return &contentcache.Entry{
		SubjectKey:  row.SubjectKey,
		Signature:   []string(row.Signature),
		Payload:     items,
		UpdatedAt:   row.UpdatedAt,
		Invalidated: row.Invalidated,
	}, nil
}

// Upsert replaces the whole row, invalidation mark included.
func (r *ContentCacheRepository) Upsert(ctx context.Context, e *contentcache.Entry) error {
	blob, err := r.codec.encode(e.Payload)
	if err != nil {
		return err
	}
	signature := e.Signature
	if signature == nil {
		signature = []string{}
	}

	query := `
		INSERT INTO content_cache (subject_key, signature, payload, item_count, invalidated, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (subject_key) DO UPDATE SET
			signature   = EXCLUDED.signature,
			payload     = EXCLUDED.payload,
			item_count  = EXCLUDED.item_count,
			invalidated = EXCLUDED.invalidated,
			updated_at  = EXCLUDED.updated_at`

	if _, err := r.db.DB.ExecContext(ctx, query, e.SubjectKey, pq.Array(signature), blob, len(e.Payload), e.Invalidated, e.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert content cache entry: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"subject_key": e.SubjectKey, "items": len(e.Payload), "bytes": len(blob)}).Debug("db: content cache entry stored")
	}
	return nil
}

// MarkInvalidated flags the row stale and keeps its payload. A missing row is not an error.
func (r *ContentCacheRepository) MarkInvalidated(ctx context.Context, subjectKey string) error {
	if _, err := r.db.DB.ExecContext(ctx, `UPDATE content_cache SET invalidated = TRUE WHERE subject_key = $1`, subjectKey); err != nil {
		return fmt.Errorf("failed to invalidate content cache entry: %w", err)
	}
	return nil
}

// Close releases the compression codec.
func (r *ContentCacheRepository) Close() {
	r.codec.close()
}
