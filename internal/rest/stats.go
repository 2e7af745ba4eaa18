package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"whichGLP/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type StatsService interface {
	GetAllStats(ctx context.Context) ([]domain.DrugStatistics, error)
	GetDrugStats(ctx context.Context, drug string) (domain.DrugStatistics, error)
	GetPlatformStats(ctx context.Context) (domain.PlatformStats, error)
}

type StatsHandler struct {
	statsService StatsService
	timeout      time.Duration
}

func NewStatsHandler(statsService StatsService, timeout time.Duration) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		timeout:      timeout,
	}
}

// GET /api/v1/stats
func (h *StatsHandler) GetAllStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.statsService.GetAllStats(ctx)
	if err != nil {
		return errorResponse(c, err, "failed to get drug statistics")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}

// GET /api/v1/stats/drugs/:drug
func (h *StatsHandler) GetDrugStats(c echo.Context) error {
	drug := strings.TrimSpace(c.Param("drug"))
	if drug == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "drug is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.statsService.GetDrugStats(ctx, drug)
	if err != nil {
		return errorResponse(c, err, "failed to get drug statistics")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}

// GET /api/v1/stats/platform
func (h *StatsHandler) GetPlatformStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.statsService.GetPlatformStats(ctx)
	if err != nil {
		return errorResponse(c, err, "failed to get platform statistics")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}
