package health

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"

	"github.com/avatarctic/bookshelf/internal/core/ports"
	infraDB "github.com/avatarctic/bookshelf/internal/infrastructure/db"
)

// ErrCircuitOpen is reported while the catalog breaker rejects requests.
var ErrCircuitOpen = errors.New("catalog circuit breaker is open")

// dbHealthChecker wraps the database for health checks.
type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.DB.PingContext(ctx) }

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client redis.Cmdable }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// Breaker is satisfied by circuit breaking clients.
type Breaker interface {
	IsOpen() bool
}

type catalogHealthChecker struct{ breaker Breaker }

func (c *catalogHealthChecker) Name() string { return "catalog" }

// Check does not call the catalog; it only reports the breaker state.
func (c *catalogHealthChecker) Check(context.Context) error {
	if c.breaker.IsOpen() {
		return ErrCircuitOpen
	}
	return nil
}

// NewDBHealthChecker creates a health checker for the database.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client redis.Cmdable) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// NewCatalogHealthChecker reports the catalog as unhealthy while its breaker is open.
func NewCatalogHealthChecker(b Breaker) ports.HealthChecker {
	return &catalogHealthChecker{breaker: b}
}
