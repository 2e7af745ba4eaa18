package rest

import (
	"context"
	"net/http"
	"time"

	"whichGLP/business/snapshot"

	"github.com/labstack/echo/v4"
)

type SnapshotSource interface {
	Current() *snapshot.Snapshot
}

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	snapshots SnapshotSource
	deps      map[string]Pinger
	now       func() time.Time
}

func NewHealthHandler(snapshots SnapshotSource, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		snapshots: snapshots,
		deps:      deps,
		now:       time.Now,
	}
}

type HealthResponse struct {
	Status          string            `json:"status"`
	SnapshotVersion uint64            `json:"snapshot_version"`
	Records         int               `json:"records"`
	SnapshotAge     string            `json:"snapshot_age,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
}

// GET /api/v1/health
// Reports 503 until the first snapshot is published. A failing dependency
// degrades the status without failing the check, since reads are served from
// memory.
func (h *HealthHandler) Health(c echo.Context) error {
	snap := h.snapshots.Current()
	res := HealthResponse{
		Status:          "ok",
		SnapshotVersion: snap.Version(),
		Records:         snap.Len(),
	}

	if snap.Version() == 0 {
		res.Status = "starting"
		return c.JSON(http.StatusServiceUnavailable, res)
	}
	res.SnapshotAge = h.now().Sub(snap.BuiltAt()).Round(time.Second).String()

	if len(h.deps) > 0 {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		res.Dependencies = make(map[string]string, len(h.deps))
		for name, dep := range h.deps {
			if err := dep.Ping(ctx); err != nil {
				res.Dependencies[name] = "down"
				res.Status = "degraded"
				continue
			}
			res.Dependencies[name] = "up"
		}
	}

	return c.JSON(http.StatusOK, res)
}
