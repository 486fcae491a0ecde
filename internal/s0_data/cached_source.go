package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/pkg/logger"
	"github.com/wonny/radar/pkg/redis"
)

// Cache is the memoization store used by CachedSource.
// *redis.Cache satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedSource memoizes ListByDate of another source.
// Keys are (provider, date, params); every entry carries an explicit TTL.
type CachedSource struct {
	inner  contracts.SnapshotSource
	cache  Cache
	ttl    time.Duration
	params string
	logger *logger.Logger
}

// NewCachedSource wraps inner. params distinguishes otherwise identical
// requests (e.g. the rule config hash).
func NewCachedSource(inner contracts.SnapshotSource, cache Cache, ttl time.Duration, params string, log *logger.Logger) *CachedSource {
	return &CachedSource{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		params: params,
		logger: log,
	}
}

// Name returns the wrapped source's name
func (s *CachedSource) Name() string {
	return s.inner.Name()
}

// Key returns the cache key for a date
func (s *CachedSource) Key(date time.Time) string {
	return redis.Key("snapshots", s.inner.Name(), date.Format(DateLayout), s.params)
}

// ListByDate returns cached snapshots or loads and stores them.
// Cache failures degrade to a direct load.
func (s *CachedSource) ListByDate(ctx context.Context, date time.Time) ([]contracts.Snapshot, error) {
	key := s.Key(date)

	var cached []contracts.Snapshot
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Snapshot cache read failed")
	}
	if found {
		s.logger.WithFields(map[string]interface{}{
			"key":   key,
			"count": len(cached),
		}).Debug("Snapshot cache hit")
		return cached, nil
	}

	snapshots, err := s.inner.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.inner.Name(), err)
	}

	if err := s.cache.Set(ctx, key, snapshots, s.ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Snapshot cache write failed")
	}
	return snapshots, nil
}
