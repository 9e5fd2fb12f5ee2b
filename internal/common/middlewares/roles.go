package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/models"
)

// RequireRoles admits the listed roles. Managers oversee every station and always pass.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return requireRoles(true, roles)
}

// RequireRolesStrict admits only the listed roles, managers included only when listed.
func RequireRolesStrict(roles ...string) echo.MiddlewareFunc {
	return requireRoles(false, roles)
}

func requireRoles(managerBypass bool, roles []string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := CurrentClaims(c)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"status":  http.StatusUnauthorized,
					"message": "Missing or invalid JWT claims",
					"data":    nil,
				})
			}
			if allowed[claims.Role] || (managerBypass && claims.Role == models.RoleManager) {
				return next(c)
			}
			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"status":  http.StatusForbidden,
				"message": "Access denied. This area is restricted.",
				"data":    nil,
			})
		}
	}
}
