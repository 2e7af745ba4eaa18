package stats

import (
	"context"
	"fmt"
	"strings"

	"whichGLP/business/snapshot"
	"whichGLP/domain"
	"whichGLP/pkg/logger"
)

type SnapshotSource interface {
	Current() *snapshot.Snapshot
}

type AllStatsCache interface {
	GetAllStats(ctx context.Context) ([]domain.DrugStatistics, error)
}

type PlatformComputer interface {
	ComputePlatform(snap *snapshot.Snapshot) domain.PlatformStats
}

type StatsService struct {
	cache     AllStatsCache
	platform  PlatformComputer
	snapshots SnapshotSource
}

func NewStatsService(cache AllStatsCache, platform PlatformComputer, snapshots SnapshotSource) *StatsService {
	return &StatsService{
		cache:     cache,
		platform:  platform,
		snapshots: snapshots,
	}
}

func (s *StatsService) GetAllStats(ctx context.Context) ([]domain.DrugStatistics, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	stats, err := s.cache.GetAllStats(ctx)
	if err != nil {
		logger.Error("failed to get drug statistics", "error", err)
		return nil, err
	}

	return stats, nil
}

// GetDrugStats looks a drug up in the cached all-drug result. An exact match
// wins; otherwise the first case-insensitive match is used.
func (s *StatsService) GetDrugStats(ctx context.Context, drug string) (domain.DrugStatistics, error) {
	drug = strings.TrimSpace(drug)
	if drug == "" {
		return domain.DrugStatistics{}, domain.ErrDrugStatsNotFound
	}

	all, err := s.GetAllStats(ctx)
	if err != nil {
		return domain.DrugStatistics{}, err
	}

	var fallback *domain.DrugStatistics
	for i := range all {
		if all[i].Drug == drug {
			return all[i], nil
		}
		if fallback == nil && strings.EqualFold(all[i].Drug, drug) {
			fallback = &all[i]
		}
	}
	if fallback != nil {
		return *fallback, nil
	}

	return domain.DrugStatistics{}, domain.ErrDrugStatsNotFound
}

func (s *StatsService) GetPlatformStats(ctx context.Context) (domain.PlatformStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlatformStats{}, fmt.Errorf("context error: %w", err)
	}

	return s.platform.ComputePlatform(s.snapshots.Current()), nil
}
