package statscache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"whichGLP/domain"
	"whichGLP/pkg/logger"
	"whichGLP/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 72 * time.Hour

// ComputeFunc produces fresh all-drug statistics and reports the snapshot
// version they were computed from.
type ComputeFunc func(ctx context.Context) ([]domain.DrugStatistics, uint64, error)

// Entry is what the shared tier stores. Expiry is derived from ComputedAt so
// that every replica agrees on it.
type Entry struct {
	Stats           []domain.DrugStatistics `json:"stats"`
	SnapshotVersion uint64                  `json:"snapshot_version"`
	ComputedAt      time.Time               `json:"computed_at"`
}

// SharedStore is an optional second tier shared between replicas.
type SharedStore interface {
	Get(ctx context.Context) (*Entry, error)
	Set(ctx context.Context, entry Entry, ttl time.Duration) error
	Delete(ctx context.Context) error
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func WithSharedStore(store SharedStore) Option {
	return func(c *Cache) {
		c.shared = store
	}
}

// WithSnapshotVersion makes the cache serve only entries computed from the
// live snapshot version, locally and from the shared tier.
func WithSnapshotVersion(current func() uint64) Option {
	return func(c *Cache) {
		c.version = current
	}
}

func WithComputeTimeout(d time.Duration) Option {
	return func(c *Cache) {
		c.computeTimeout = d
	}
}

// Cache memoizes all-drug statistics under a single key. Concurrent misses
// share one computation; Invalidate discards both the cached value and any
// computation already in flight.
type Cache struct {
	compute        ComputeFunc
	shared         SharedStore
	ttl            time.Duration
	computeTimeout time.Duration
	now            func() time.Time
	version        func() uint64

	mu         sync.Mutex
	entry      *Entry
	generation uint64

	group singleflight.Group
}

func New(compute ComputeFunc, opts ...Option) *Cache {
	c := &Cache{
		compute: compute,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAllStats returns cached statistics or computes them. A failed computation
// is returned to every waiter and never cached.
func (c *Cache) GetAllStats(ctx context.Context) ([]domain.DrugStatistics, error) {
	if stats, ok := c.fresh(); ok {
		metrics.StatsCacheRequests.WithLabelValues("hit").Inc()
		return stats, nil
	}

	gen := c.currentGeneration()
	ch := c.group.DoChan(fmt.Sprintf("all:%d", gen), func() (interface{}, error) {
		return c.load(ctx, gen)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.DrugStatistics), nil
	}
}

// Invalidate drops the cached value. Results of computations that started
// before the call are returned to their callers but not stored.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	c.entry = nil
	c.mu.Unlock()

	metrics.StatsCacheInvalidations.Inc()

	if c.shared == nil {
		return nil
	}
	if err := c.shared.Delete(ctx); err != nil {
		return fmt.Errorf("delete shared stats cache: %w", err)
	}
	return nil
}

func (c *Cache) load(ctx context.Context, gen uint64) ([]domain.DrugStatistics, error) {
	if stats, ok := c.fresh(); ok {
		metrics.StatsCacheRequests.WithLabelValues("hit").Inc()
		return stats, nil
	}

	// detached so one caller hanging up does not fail the other waiters
	ctx = context.WithoutCancel(ctx)

	sharedEntry := c.loadShared(ctx)
	if sharedEntry != nil && c.usable(sharedEntry) {
		metrics.StatsCacheRequests.WithLabelValues("shared_hit").Inc()
		c.store(gen, *sharedEntry)
		return sharedEntry.Stats, nil
	}

	metrics.StatsCacheRequests.WithLabelValues("miss").Inc()

	computeCtx := ctx
	if c.computeTimeout > 0 {
		var cancel context.CancelFunc
		computeCtx, cancel = context.WithTimeout(ctx, c.computeTimeout)
		defer cancel()
	}

	stats, version, err := c.compute(computeCtx)
	if err != nil {
		metrics.StatsComputations.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("compute stats: %w", err)
	}
	metrics.StatsComputations.WithLabelValues("success").Inc()

	entry := Entry{Stats: stats, SnapshotVersion: version, ComputedAt: c.now()}
	// a replica still on an older snapshot must not replace a newer entry
	newerShared := sharedEntry != nil && sharedEntry.SnapshotVersion > version
	if c.store(gen, entry) && c.shared != nil && !newerShared {
		if err := c.shared.Set(ctx, entry, c.ttl); err != nil {
			logger.Warn("failed to write shared stats cache", "error", err)
		}
	}

	return stats, nil
}

func (c *Cache) loadShared(ctx context.Context) *Entry {
	if c.shared == nil {
		return nil
	}

	entry, err := c.shared.Get(ctx)
	if err != nil {
		logger.Warn("failed to read shared stats cache", "error", err)
		return nil
	}
	return entry
}

// usable reports whether entry is unexpired and, when a version source is
// set, computed from the live snapshot.
func (c *Cache) usable(entry *Entry) bool {
	if !c.now().Before(entry.ComputedAt.Add(c.ttl)) {
		return false
	}
	return c.version == nil || entry.SnapshotVersion == c.version()
}

func (c *Cache) fresh() ([]domain.DrugStatistics, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil {
		return nil, false
	}
	if !c.usable(c.entry) {
		c.entry = nil
		return nil, false
	}
	return c.entry.Stats, true
}

// store keeps entry only if no invalidation happened since gen was read.
func (c *Cache) store(gen uint64, entry Entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		return false
	}
	c.entry = &entry
	return true
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}
