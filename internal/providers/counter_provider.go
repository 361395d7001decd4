package providers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"infinite-experiment/hangar/internal/common"
	"infinite-experiment/hangar/internal/compliance"
	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/logging"
	"infinite-experiment/hangar/internal/metrics"

	"github.com/jmoiron/sqlx"
)

// ErrAircraftNotFound is returned when no aircraft matches the lookup
var ErrAircraftNotFound = errors.New("aircraft not found")

// CounterSnapshotProvider supplies the current usage counters of an aircraft
type CounterSnapshotProvider interface {
	GetCounters(ctx context.Context, userID, aircraftID string) (*compliance.Counters, error)
}

const countersQuery = `
	SELECT
		COALESCE(hobbs, 0) AS hobbs,
		COALESCE(tach, 0) AS tach,
		COALESCE(airframe_total_time, 0) AS airframe_total_time,
		COALESCE(engine_total_time, 0) AS engine_total_time,
		COALESCE(prop_total_time, 0) AS prop_total_time
	FROM aircraft
	WHERE user_id = ? AND id = ?`

// SQLCounterProvider reads counters straight from the aircraft table
type SQLCounterProvider struct {
	db *sqlx.DB
}

var _ CounterSnapshotProvider = (*SQLCounterProvider)(nil)

func NewSQLCounterProvider(db *sqlx.DB) *SQLCounterProvider {
	return &SQLCounterProvider{db: db}
}

func (p *SQLCounterProvider) GetCounters(ctx context.Context, userID, aircraftID string) (*compliance.Counters, error) {
	var c compliance.Counters

	err := p.db.GetContext(ctx, &c, p.db.Rebind(countersQuery), userID, aircraftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("counters for %s: %w", aircraftID, ErrAircraftNotFound)
		}
		return nil, fmt.Errorf("failed to read counters for %s: %w", aircraftID, err)
	}

	return &c, nil
}

// CachedCounterProvider keeps recent snapshots in a cache so list rendering
// and alert summaries do not hit the database per row
type CachedCounterProvider struct {
	next    CounterSnapshotProvider
	cache   common.CacheInterface
	ttl     time.Duration
	metrics *metrics.MetricsRegistry
}

var _ CounterSnapshotProvider = (*CachedCounterProvider)(nil)

func NewCachedCounterProvider(next CounterSnapshotProvider, cache common.CacheInterface, ttl time.Duration, m *metrics.MetricsRegistry) *CachedCounterProvider {
	return &CachedCounterProvider{next: next, cache: cache, ttl: ttl, metrics: m}
}

func (p *CachedCounterProvider) GetCounters(ctx context.Context, userID, aircraftID string) (*compliance.Counters, error) {
	key := counterKey(userID, aircraftID)

	if data, found := p.cache.Get(key); found {
		var c compliance.Counters
		if err := json.Unmarshal(data, &c); err == nil {
			p.metrics.CacheHit(string(constants.CachePrefixCounters))
			return &c, nil
		}
		logging.Warn("Discarding unreadable counter cache entry", "key", key)
		p.cache.Delete(key)
	}
	p.metrics.CacheMiss(string(constants.CachePrefixCounters))

	c, err := p.next.GetCounters(ctx, userID, aircraftID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(c); err == nil {
		p.cache.Set(key, data, p.ttl)
	}
	return c, nil
}

// Invalidate drops the cached snapshot after the counters change
func (p *CachedCounterProvider) Invalidate(userID, aircraftID string) {
	p.cache.Delete(counterKey(userID, aircraftID))
}

func counterKey(userID, aircraftID string) string {
	return common.CacheKey(string(constants.CachePrefixCounters), userID, aircraftID)
}
