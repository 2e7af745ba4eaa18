package materializer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"whichGLP/business/snapshot"
	"whichGLP/domain"
	"whichGLP/pkg/logger"
	"whichGLP/pkg/metrics"
)

// RecordStore reads the joined source rows the snapshot is built from.
type RecordStore interface {
	ScanExperiences(ctx context.Context) ([]domain.RawExperience, error)
}

// Invalidator is notified after every successful publish.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

const invalidateTimeout = 5 * time.Second

type Materializer struct {
	store     RecordStore
	snapshots *snapshot.Store
	timeout   time.Duration
	now       func() time.Time

	// running serializes refreshes; a second caller gets ErrRefreshInProgress.
	running sync.Mutex

	mu           sync.RWMutex
	invalidators []Invalidator
}

func NewMaterializer(store RecordStore, snapshots *snapshot.Store, timeout time.Duration) *Materializer {
	return &Materializer{
		store:     store,
		snapshots: snapshots,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Subscribe registers a listener invalidated after each publish.
func (m *Materializer) Subscribe(inv Invalidator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidators = append(m.invalidators, inv)
}

// Refresh rebuilds the snapshot from the store and publishes it atomically.
// On any failure the previously published snapshot stays live.
func (m *Materializer) Refresh(ctx context.Context) (*snapshot.Snapshot, error) {
	if !m.running.TryLock() {
		return nil, domain.ErrRefreshInProgress
	}
	defer m.running.Unlock()

	start := time.Now()
	snap, err := m.build(ctx)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.RefreshTotal.WithLabelValues("failure").Inc()
		metrics.RefreshDuration.WithLabelValues("failure").Observe(elapsed)
		logger.Error("experience refresh failed",
			"error", err,
			"live_version", m.snapshots.Current().Version(),
		)
		return nil, err
	}

	m.snapshots.Publish(snap)

	metrics.RefreshTotal.WithLabelValues("success").Inc()
	metrics.RefreshDuration.WithLabelValues("success").Observe(elapsed)
	metrics.SnapshotRecords.Set(float64(snap.Len()))
	metrics.SnapshotVersion.Set(float64(snap.Version()))

	logger.Info("experience snapshot published",
		"version", snap.Version(),
		"records", snap.Len(),
		"duration_seconds", elapsed,
	)

	m.notify(ctx, snap.Version())

	return snap, nil
}

func (m *Materializer) build(ctx context.Context) (*snapshot.Snapshot, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	rows, err := m.store.ScanExperiences(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan experiences: %w", err)
	}

	records := Materialize(rows)

	// the scan may have returned just before the deadline fired
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("refresh aborted: %w", err)
	}

	version := m.snapshots.Current().Version() + 1
	return snapshot.New(version, m.now().UTC(), records), nil
}

func (m *Materializer) notify(ctx context.Context, version uint64) {
	m.mu.RLock()
	invalidators := append([]Invalidator(nil), m.invalidators...)
	m.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()

	for _, inv := range invalidators {
		if err := inv.Invalidate(ctx); err != nil {
			logger.Warn("post-refresh invalidation failed",
				"version", version,
				"error", err,
			)
		}
	}
}
