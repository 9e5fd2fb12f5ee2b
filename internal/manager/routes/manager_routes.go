package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/manager/controllers"
)

func RegisterManagerRoutes(api *echo.Group, mc *controllers.ManagerController, secret string) {
	manager := api.Group("/manager", middlewares.JWTMiddleware(secret), middlewares.RequireRolesStrict(cmodels.RoleManager))

	manager.GET("/dashboard", mc.Dashboard)
	manager.GET("/users", mc.Users)
	manager.PUT("/users/:id/role", mc.UpdateUserRole)
	manager.PUT("/users/:id/active", mc.SetUserActive)
	manager.GET("/doctors", mc.Doctors)
	manager.GET("/patients", mc.Patients)
	manager.GET("/reports/financial", mc.FinancialReport)
	manager.GET("/settings", mc.GetSettings)
	manager.PUT("/settings", mc.UpdateSettings)
	manager.GET("/activity-logs", mc.ActivityLogs)
	manager.GET("/messages", mc.Messages)
	manager.POST("/messages/:id/respond", mc.RespondMessage)

	staff := api.Group("/staff", middlewares.JWTMiddleware(secret), middlewares.RequireRolesStrict(cmodels.RoleStaff))
	staff.GET("/dashboard", mc.StaffDashboard)
}
