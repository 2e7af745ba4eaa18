package middleware

import (
	"errors"
	"net/http"

	"whichGLP/pkg/logger"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: code, Message: message}
}

// ErrorHandler replaces echo's default handler so that routing errors and
// unhandled handler errors share one JSON shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("unhandled request error",
			"error", err,
			"method", c.Request().Method,
			"path", c.Path(),
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, errorBody(http.StatusText(status), message))
	}
	if writeErr != nil {
		logger.Error("failed to write error response", "error", writeErr)
	}
}
