package rest

import (
	"context"
	"net/http"
	"time"

	"whichGLP/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ExperienceService interface {
	List(ctx context.Context, q domain.ListQuery) (domain.ExperiencePage, error)
	GetByID(ctx context.Context, id string) (domain.ExperienceRecord, error)
}

type ExperienceHandler struct {
	experienceService ExperienceService
	validator         *validator.Validate
	timeout           time.Duration
}

func NewExperienceHandler(experienceService ExperienceService, validate *validator.Validate, timeout time.Duration) *ExperienceHandler {
	return &ExperienceHandler{
		experienceService: experienceService,
		validator:         validate,
		timeout:           timeout,
	}
}

type ListExperiencesRequest struct {
	Drug   string `query:"drug" validate:"omitempty,max=100"`
	Search string `query:"search" validate:"omitempty,max=200"`
	Sort   string `query:"sort" validate:"omitempty,oneof=date rating duration start_weight end_weight weight_change weight_change_percent speed speed_percent"`
	Order  string `query:"order" validate:"omitempty,oneof=asc desc"`
	Cursor int    `query:"cursor" validate:"gte=0"`
	Limit  int    `query:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GET /api/v1/experiences?drug=&search=&sort=&order=&cursor=&limit=
func (h *ExperienceHandler) ListExperiences(c echo.Context) error {
	var req ListExperiencesRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid query parameters"})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	page, err := h.experienceService.List(ctx, domain.ListQuery{
		Drug:      req.Drug,
		Search:    req.Search,
		Sort:      domain.SortField(req.Sort),
		Direction: domain.SortDirection(req.Order),
		Cursor:    req.Cursor,
		Limit:     req.Limit,
	})
	if err != nil {
		return errorResponse(c, err, "failed to list experiences")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(page))
}

// GET /api/v1/experiences/:id
func (h *ExperienceHandler) GetExperienceByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid experience id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	record, err := h.experienceService.GetByID(ctx, id.String())
	if err != nil {
		return errorResponse(c, err, "failed to get experience")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(record))
}
