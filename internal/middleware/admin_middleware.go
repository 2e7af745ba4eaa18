package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"whichGLP/domain"
	"whichGLP/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AdminToken guards admin routes with a static bearer token. An empty token
// leaves the routes open, which is only meant for local development.
func AdminToken(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" {
				return next(c)
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, errorBody(domain.ErrUnauthorized.Error(), "Missing authorization header"))
			}

			tokenParts := strings.SplitN(authHeader, " ", 2)
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, errorBody(domain.ErrUnauthorized.Error(), "Invalid authorization format"))
			}

			if subtle.ConstantTimeCompare([]byte(tokenParts[1]), []byte(token)) != 1 {
				logger.Warn("rejected admin request", "path", c.Path(), "remote_ip", c.RealIP())
				return c.JSON(http.StatusUnauthorized, errorBody(domain.ErrUnauthorized.Error(), "Invalid token"))
			}

			return next(c)
		}
	}
}
