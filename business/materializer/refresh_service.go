package materializer

import (
	"context"
	"errors"
	"time"

	"whichGLP/business/snapshot"
	"whichGLP/domain"
	"whichGLP/pkg/logger"
)

// Refresher is the part of Materializer the service drives.
type Refresher interface {
	Refresh(ctx context.Context) (*snapshot.Snapshot, error)
}

type RefreshServiceConfig struct {
	// RefreshOnStartup builds the first snapshot as soon as the service starts.
	RefreshOnStartup bool

	// Interval between scheduled refreshes. Defaults to one hour.
	Interval time.Duration
}

// RefreshService runs scheduled refreshes under a suture supervisor.
type RefreshService struct {
	refresher Refresher
	config    RefreshServiceConfig
	name      string
}

func NewRefreshService(refresher Refresher, cfg RefreshServiceConfig) *RefreshService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}

	return &RefreshService{
		refresher: refresher,
		config:    cfg,
		name:      "materializer-refresh",
	}
}

// Serve implements suture.Service. Refresh failures are logged and retried on
// the next tick; Serve only returns when ctx is done.
func (s *RefreshService) Serve(ctx context.Context) error {
	logger.Info("refresh service starting",
		"refresh_on_startup", s.config.RefreshOnStartup,
		"interval", s.config.Interval.String(),
	)

	if s.config.RefreshOnStartup {
		s.refresh(ctx, "startup")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("refresh service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.refresh(ctx, "scheduled")
		}
	}
}

func (s *RefreshService) refresh(ctx context.Context, trigger string) {
	_, err := s.refresher.Refresh(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrRefreshInProgress):
		logger.Debug("refresh skipped, another refresh is running", "trigger", trigger)
	default:
		logger.Warn("refresh failed, keeping previous snapshot", "trigger", trigger, "error", err)
	}
}

func (s *RefreshService) String() string {
	return s.name
}
