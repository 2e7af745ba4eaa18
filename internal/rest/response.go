package rest

import (
	"context"
	"errors"
	"net/http"

	"whichGLP/domain"
	"whichGLP/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrExperienceNotFound),
		errors.Is(err, domain.ErrDrugStatsNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSortField),
		errors.Is(err, domain.ErrInvalidSortDirection),
		errors.Is(err, domain.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRefreshInProgress):
		return http.StatusConflict
	// a timed out upstream call is still a timeout
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrRecommenderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse writes err with the status its type maps to. Internal errors
// are logged and their text is not leaked.
func errorResponse(c echo.Context, err error, msg string) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg, "error", err, "path", c.Path())
		return c.JSON(status, ResponseError{Message: msg})
	}

	return c.JSON(status, ResponseError{Message: err.Error()})
}
