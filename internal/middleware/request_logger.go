package middleware

import (
	"time"

	"whichGLP/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogger logs one line per request through the process logger.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			fields := []interface{}{
				"method", req.Method,
				"path", c.Path(),
				"uri", req.RequestURI,
				"status", res.Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
			}

			switch {
			case res.Status >= 500:
				logger.Error("request", fields...)
			case res.Status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}

			// already handled by c.Error above
			return nil
		}
	}
}
