//go:build !integration

package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"whichGLP/business/aggregation"
	"whichGLP/business/snapshot"
	"whichGLP/business/statscache"
	"whichGLP/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(s string) *string { return &s }

func newStack(records ...domain.ExperienceRecord) (*StatsService, *snapshot.Store, *statscache.Cache) {
	store := snapshot.NewStore()
	store.Publish(snapshot.New(1, time.Now(), records))

	engine := aggregation.NewEngine(aggregation.Options{})
	cache := statscache.New(func(ctx context.Context) ([]domain.DrugStatistics, uint64, error) {
		snap := store.Current()
		stats, err := engine.ComputeAll(ctx, snap)
		return stats, snap.Version(), err
	}, statscache.WithSnapshotVersion(func() uint64 { return store.Current().Version() }))

	return NewStatsService(cache, engine, store), store, cache
}

func TestGetDrugStats(t *testing.T) {
	svc, _, _ := newStack(
		domain.ExperienceRecord{ID: "1", PrimaryDrug: sp("Zepbound")},
		domain.ExperienceRecord{ID: "2", PrimaryDrug: sp("Zepbound")},
		domain.ExperienceRecord{ID: "3", PrimaryDrug: sp("Wegovy")},
	)
	ctx := context.Background()

	got, err := svc.GetDrugStats(ctx, "Zepbound")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)

	got, err = svc.GetDrugStats(ctx, "wegovy")
	require.NoError(t, err)
	assert.Equal(t, "Wegovy", got.Drug)

	_, err = svc.GetDrugStats(ctx, "Saxenda")
	assert.ErrorIs(t, err, domain.ErrDrugStatsNotFound)
}

func TestGetAllStats_ReflectsRefreshAfterInvalidate(t *testing.T) {
	svc, store, cache := newStack(domain.ExperienceRecord{ID: "1", PrimaryDrug: sp("Zepbound")})
	ctx := context.Background()

	all, err := svc.GetAllStats(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	store.Publish(snapshot.New(2, time.Now(), []domain.ExperienceRecord{
		{ID: "1", PrimaryDrug: sp("Zepbound")},
		{ID: "2", PrimaryDrug: sp("Mounjaro")},
	}))
	require.NoError(t, cache.Invalidate(ctx))

	all, err = svc.GetAllStats(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetAllStats_PropagatesErrors(t *testing.T) {
	cache := statscache.New(func(ctx context.Context) ([]domain.DrugStatistics, uint64, error) {
		return nil, 0, errors.New("boom")
	})
	svc := NewStatsService(cache, aggregation.NewEngine(aggregation.Options{}), snapshot.NewStore())

	_, err := svc.GetAllStats(context.Background())
	assert.Error(t, err)
}

func TestGetPlatformStats(t *testing.T) {
	svc, _, _ := newStack(
		domain.ExperienceRecord{ID: "1", PrimaryDrug: sp("Zepbound"), Location: sp("Texas")},
		domain.ExperienceRecord{ID: "2", PrimaryDrug: sp("Wegovy")},
	)

	p, err := svc.GetPlatformStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalExperiences)
	assert.Equal(t, 2, p.UniqueDrugs)
	assert.Equal(t, 1, p.LocationsTracked)
	assert.Equal(t, uint64(1), p.SnapshotVersion)
}
