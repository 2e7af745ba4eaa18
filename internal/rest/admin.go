package rest

import (
	"context"
	"net/http"

	"whichGLP/business/snapshot"
	"whichGLP/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type Refresher interface {
	Refresh(ctx context.Context) (*snapshot.Snapshot, error)
}

type AdminHandler struct {
	refresher Refresher
}

func NewAdminHandler(refresher Refresher) *AdminHandler {
	return &AdminHandler{
		refresher: refresher,
	}
}

type RefreshResponse struct {
	SnapshotVersion uint64 `json:"snapshot_version"`
	Records         int    `json:"records"`
}

// POST /api/v1/admin/refresh
// Runs a refresh synchronously; the refresh carries its own timeout.
func (h *AdminHandler) Refresh(c echo.Context) error {
	snap, err := h.refresher.Refresh(c.Request().Context())
	if err != nil {
		return errorResponse(c, err, "failed to refresh experiences")
	}

	logger.Info("manual refresh completed", "version", snap.Version(), "records", snap.Len())

	return c.JSON(http.StatusOK, fres.Response.StatusOK(RefreshResponse{
		SnapshotVersion: snap.Version(),
		Records:         snap.Len(),
	}))
}
