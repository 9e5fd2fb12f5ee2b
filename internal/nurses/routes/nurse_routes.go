package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/nurses/controllers"
)

func RegisterNurseRoutes(api *echo.Group, nc *controllers.NurseController, secret string) {
	nurses := api.Group("/nurses", middlewares.JWTMiddleware(secret))

	nurses.GET("/dashboard", nc.Dashboard, middlewares.RequireRoles(cmodels.RoleNurse))
	nurses.POST("/appointments/:id/vitals", nc.EnterVitals, middlewares.RequireRoles(cmodels.RoleNurse))
	nurses.POST("/vitals", nc.RecordVitals, middlewares.RequireRoles(cmodels.RoleNurse, cmodels.RoleDoctor))
}
