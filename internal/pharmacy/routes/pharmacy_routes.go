package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/pharmacy/controllers"
)

func RegisterPharmacyRoutes(api *echo.Group, pc *controllers.PharmacyController, secret string) {
	pharmacy := api.Group("/pharmacy", middlewares.JWTMiddleware(secret))
	station := middlewares.RequireRoles(cmodels.RolePharmacist)
	managerOnly := middlewares.RequireRolesStrict(cmodels.RoleManager)

	pharmacy.GET("/dashboard", pc.Dashboard, station)
	pharmacy.POST("/medicines", pc.AddMedicine, station)
	pharmacy.GET("/inventory/report", pc.InventoryReport, station)
	pharmacy.POST("/prescriptions/:id/dispense", pc.Dispense, station)
	pharmacy.GET("/alerts", pc.StockAlerts, managerOnly)
	pharmacy.GET("/audit-logs", pc.AuditLogs, managerOnly)
}
