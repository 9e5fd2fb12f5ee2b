package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/pkg/utils"
)

// MaintenanceChecker reports whether the hospital is in maintenance mode.
type MaintenanceChecker interface {
	MaintenanceMode(ctx context.Context) (bool, error)
}

var maintenanceOpenPaths = []string{"/api/accounts/login", "/health", "/metrics", "/ws"}

// Maintenance answers 503 to everyone but managers while maintenance mode is on.
// It runs before JWTMiddleware, so the bearer token is read here directly.
func Maintenance(checker MaintenanceChecker, secret string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, open := range maintenanceOpenPaths {
				if path == open || strings.HasPrefix(path, open+"/") {
					return next(c)
				}
			}

			on, err := checker.MaintenanceMode(c.Request().Context())
			if err != nil {
				// a settings outage must not lock everyone out
				log.Warn().Err(err).Msg("maintenance mode lookup failed")
				return next(c)
			}
			if !on {
				return next(c)
			}

			if tokenStr, problem := bearerToken(c); problem == "" {
				if claims, err := utils.ValidateJWTToken(secret, tokenStr); err == nil && claims.Role == models.RoleManager {
					return next(c)
				}
			}
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status":  http.StatusServiceUnavailable,
				"message": "The hospital system is under maintenance. Please try again later.",
				"data":    nil,
			})
		}
	}
}
