package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/s0_data"
	"github.com/wonny/radar/pkg/database"
	"github.com/wonny/radar/pkg/redis"
)

// snapshotCacheVersion changes whenever the cached snapshot layout changes
const snapshotCacheVersion = "v1"

// resources holds the optional external connections of a command
type resources struct {
	db    *database.DB  // nil when DATABASE_URL is unset
	redis *redis.Client // disabled unless REDIS_ENABLED=true
}

// openResources connects to Postgres (optional) and Redis (optional)
func openResources(ctx context.Context, rt *runtime) (*resources, error) {
	res := &resources{}

	db, err := database.New(ctx, rt.cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		rt.log.Debug("DATABASE_URL not set, running without database")
	case err != nil:
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		res.db = db
		rt.log.Info("Connected to database")
	}

	rc, err := redis.New(ctx, rt.cfg)
	if err != nil {
		res.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	res.redis = rc

	return res, nil
}

// Close releases every open connection
func (r *resources) Close() {
	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
}

// cache returns the typed redis cache, or nil when redis is disabled
func (r *resources) cache() *redis.Cache {
	if r.redis == nil || !r.redis.Enabled() {
		return nil
	}
	return redis.NewCache(r.redis, "radar")
}

// snapshotSource builds the Postgres snapshot source, wrapped by the redis
// cache when enabled. Returns nil without a database.
func (r *resources) snapshotSource(rt *runtime, useCache bool) contracts.SnapshotSource {
	if r.db == nil {
		return nil
	}

	var source contracts.SnapshotSource = s0_data.NewSnapshotRepository(r.db.Pool)
	if c := r.cache(); useCache && c != nil {
		source = s0_data.NewCachedSource(source, c, rt.rules.Scan.CacheTTL, snapshotCacheVersion, rt.log)
	}
	return source
}
