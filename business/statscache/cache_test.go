//go:build !integration

package statscache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"whichGLP/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type countingCompute struct {
	calls   atomic.Int32
	drug    atomic.Value
	version atomic.Uint64
	err     error
	gate    chan struct{}
}

func newCountingCompute(drug string) *countingCompute {
	c := &countingCompute{}
	c.drug.Store(drug)
	return c
}

func (c *countingCompute) Compute(ctx context.Context) ([]domain.DrugStatistics, uint64, error) {
	c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	if c.err != nil {
		return nil, 0, c.err
	}
	return []domain.DrugStatistics{{Drug: c.drug.Load().(string), Count: 1}}, c.version.Load(), nil
}

func TestGetAllStats_CachesUntilTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	compute := newCountingCompute("X")
	cache := New(compute.Compute, WithTTL(time.Hour), WithClock(clock.Now))
	ctx := context.Background()

	_, err := cache.GetAllStats(ctx)
	require.NoError(t, err)
	clock.Advance(59 * time.Minute)
	_, err = cache.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), compute.calls.Load())

	clock.Advance(time.Minute)
	_, err = cache.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), compute.calls.Load())
}

func TestGetAllStats_InvalidateForcesRecompute(t *testing.T) {
	compute := newCountingCompute("old")
	cache := New(compute.Compute)
	ctx := context.Background()

	stats, err := cache.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", stats[0].Drug)

	compute.drug.Store("new")
	require.NoError(t, cache.Invalidate(ctx))

	stats, err = cache.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", stats[0].Drug)
	assert.Equal(t, int32(2), compute.calls.Load())
}

func TestGetAllStats_ConcurrentMissesComputeOnce(t *testing.T) {
	compute := newCountingCompute("X")
	compute.gate = make(chan struct{})
	cache := New(compute.Compute)

	const callers = 50
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		errs    atomic.Int32
	)
	wg.Add(callers)
	started.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			started.Done()
			if _, err := cache.GetAllStats(context.Background()); err != nil {
				errs.Add(1)
			}
		}()
	}

	started.Wait()
	require.Eventually(t, func() bool { return compute.calls.Load() == 1 }, time.Second, time.Millisecond)
	// give stragglers time to join the in-flight computation
	time.Sleep(20 * time.Millisecond)
	close(compute.gate)
	wg.Wait()

	assert.Equal(t, int32(1), compute.calls.Load())
	assert.Equal(t, int32(0), errs.Load())
}

func TestGetAllStats_ErrorsAreNotCached(t *testing.T) {
	compute := newCountingCompute("X")
	compute.err = errors.New("snapshot unavailable")
	cache := New(compute.Compute)
	ctx := context.Background()

	_, err := cache.GetAllStats(ctx)
	require.Error(t, err)

	compute.err = nil
	stats, err := cache.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Len(t, stats, 1)
	assert.Equal(t, int32(2), compute.calls.Load())
}

func TestGetAllStats_InvalidationDuringComputeIsNotStored(t *testing.T) {
	compute := newCountingCompute("stale")
	compute.gate = make(chan struct{})
	cache := New(compute.Compute)
	ctx := context.Background()

	done := make(chan []domain.DrugStatistics, 1)
	go func() {
		stats, _ := cache.GetAllStats(ctx)
		done <- stats
	}()

	require.Eventually(t, func() bool { return compute.calls.Load() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, cache.Invalidate(ctx))
	close(compute.gate)
	assert.Equal(t, "stale", (<-done)[0].Drug)

	compute.drug.Store("fresh")
	stats, err := cache.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh", stats[0].Drug)
}

func TestGetAllStats_CallerCancellation(t *testing.T) {
	compute := newCountingCompute("X")
	compute.gate = make(chan struct{})
	defer close(compute.gate)
	cache := New(compute.Compute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := cache.GetAllStats(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type memoryShared struct {
	mu        sync.Mutex
	entry     *Entry
	sets      int
	deletes   int
	deleteErr error
}

func (m *memoryShared) Get(ctx context.Context) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entry, nil
}

func (m *memoryShared) Set(ctx context.Context, entry Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = &entry
	m.sets++
	return nil
}

func (m *memoryShared) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.entry = nil
	return nil
}

func TestGetAllStats_SharedTier(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	shared := &memoryShared{}
	ctx := context.Background()

	first := newCountingCompute("X")
	replicaA := New(first.Compute, WithSharedStore(shared), WithClock(clock.Now), WithTTL(time.Hour))
	_, err := replicaA.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, shared.sets)

	second := newCountingCompute("Y")
	replicaB := New(second.Compute, WithSharedStore(shared), WithClock(clock.Now), WithTTL(time.Hour))
	stats, err := replicaB.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "X", stats[0].Drug, "served from the shared tier")
	assert.Equal(t, int32(0), second.calls.Load())

	clock.Advance(time.Hour)
	replicaC := New(second.Compute, WithSharedStore(shared), WithClock(clock.Now), WithTTL(time.Hour))
	stats, err = replicaC.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Y", stats[0].Drug, "expired shared entries are ignored")

	require.NoError(t, replicaA.Invalidate(ctx))
	assert.Equal(t, 1, shared.deletes)
}

func TestGetAllStats_ComputeTimeoutBoundsAggregation(t *testing.T) {
	var calls atomic.Int32
	compute := func(ctx context.Context) ([]domain.DrugStatistics, uint64, error) {
		calls.Add(1)
		<-ctx.Done()
		return nil, 0, ctx.Err()
	}
	cache := New(compute, WithComputeTimeout(10*time.Millisecond))
	ctx := context.Background()

	_, err := cache.GetAllStats(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = cache.GetAllStats(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(2), calls.Load(), "timed out computations are not cached")
}

func TestGetAllStats_SharedTierRejectsOtherSnapshotVersions(t *testing.T) {
	shared := &memoryShared{}
	ctx := context.Background()

	var liveA, liveB atomic.Uint64
	liveA.Store(2)
	liveB.Store(1)

	computeA := newCountingCompute("new-snapshot")
	computeA.version.Store(2)
	computeB := newCountingCompute("old-snapshot")
	computeB.version.Store(1)

	replicaA := New(computeA.Compute, WithSharedStore(shared), WithSnapshotVersion(liveA.Load))
	replicaB := New(computeB.Compute, WithSharedStore(shared), WithSnapshotVersion(liveB.Load))

	// A has refreshed; B still serves the previous snapshot and repopulates the shared key
	require.NoError(t, replicaA.Invalidate(ctx))
	stats, err := replicaB.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old-snapshot", stats[0].Drug)

	stats, err = replicaA.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new-snapshot", stats[0].Drug)
	assert.Equal(t, int32(1), computeA.calls.Load())
	assert.Equal(t, uint64(2), shared.entry.SnapshotVersion)

	// B catches up and picks A's entry from the shared tier
	liveB.Store(2)
	stats, err = replicaB.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new-snapshot", stats[0].Drug)
	assert.Equal(t, int32(1), computeB.calls.Load())
}

func TestGetAllStats_OlderReplicaDoesNotOverwriteNewerEntry(t *testing.T) {
	shared := &memoryShared{entry: &Entry{
		Stats:           []domain.DrugStatistics{{Drug: "new-snapshot"}},
		SnapshotVersion: 5,
		ComputedAt:      time.Now(),
	}}

	compute := newCountingCompute("old-snapshot")
	compute.version.Store(4)
	cache := New(compute.Compute, WithSharedStore(shared), WithSnapshotVersion(func() uint64 { return 4 }))

	stats, err := cache.GetAllStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old-snapshot", stats[0].Drug)
	assert.Equal(t, 0, shared.sets)
	assert.Equal(t, uint64(5), shared.entry.SnapshotVersion)
}

func TestGetAllStats_FailedSharedDeleteDoesNotServeStaleStats(t *testing.T) {
	shared := &memoryShared{}
	ctx := context.Background()

	var live atomic.Uint64
	live.Store(1)
	compute := newCountingCompute("v1")
	compute.version.Store(1)
	cache := New(compute.Compute, WithSharedStore(shared), WithSnapshotVersion(live.Load))

	_, err := cache.GetAllStats(ctx)
	require.NoError(t, err)

	live.Store(2)
	compute.version.Store(2)
	compute.drug.Store("v2")
	shared.deleteErr = errors.New("redis down")
	assert.Error(t, cache.Invalidate(ctx))

	stats, err := cache.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", stats[0].Drug)
	assert.Equal(t, int32(2), compute.calls.Load())
}
