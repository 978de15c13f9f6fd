package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AccessGateMiddleware enforces the optional shared-secret check. When no
// secret is configured every request passes; otherwise the request must
// carry the exact secret in the X-MCP-API-Key header.
func (c *Controller) AccessGateMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		secret := c.Settings.Server.APIKey
		if secret == "" {
			return next(ctx)
		}

		provided := ctx.Request().Header.Get(APIKeyHeader)
		if provided != "" &&
			subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1 {
			return next(ctx)
		}

		c.logger.Warn("access gate rejected request",
			"path", ctx.Request().URL.Path,
			"ip", ctx.RealIP(),
			"key_provided", provided != "",
		)

		return ctx.JSON(http.StatusForbidden, map[string]string{
			"error": "Invalid API key",
		})
	}
}
