package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/inpatient/controllers"
)

func RegisterInpatientRoutes(api *echo.Group, wc *controllers.WardController, secret string) {
	ward := api.Group("/inpatient", middlewares.JWTMiddleware(secret))
	clinical := middlewares.RequireRoles(cmodels.RoleNurse, cmodels.RoleDoctor)

	ward.GET("/dashboard", wc.Dashboard, clinical)
	ward.GET("/wards", wc.Wards, clinical)
	ward.POST("/wards", wc.CreateWard, middlewares.RequireRolesStrict(cmodels.RoleManager))
	ward.POST("/admissions", wc.Admit, clinical)
	ward.POST("/admissions/:id/vitals", wc.LogVitals, clinical)
	ward.POST("/admissions/:id/discharge", wc.Discharge, clinical)
}
