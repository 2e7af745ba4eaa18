package rest

import (
	"context"
	"net/http"
	"time"

	"whichGLP/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type RecommendationService interface {
	Recommend(ctx context.Context, profile domain.RecommendationProfile) (domain.RecommendationResult, error)
}

type RecommendationHandler struct {
	recommendationService RecommendationService
	timeout               time.Duration
}

func NewRecommendationHandler(recommendationService RecommendationService, timeout time.Duration) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationService: recommendationService,
		timeout:               timeout,
	}
}

// POST /api/v1/recommendations
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	var profile domain.RecommendationProfile
	if err := c.Bind(&profile); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.recommendationService.Recommend(ctx, profile)
	if err != nil {
		return errorResponse(c, err, "failed to get recommendations")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
