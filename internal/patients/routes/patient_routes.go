package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/patients/controllers"
)

func RegisterPatientRoutes(api *echo.Group, pc *controllers.PatientController, secret string) {
	patients := api.Group("/patients",
		middlewares.JWTMiddleware(secret),
		middlewares.RequireRolesStrict(cmodels.RolePatient))

	patients.GET("/dashboard", pc.Dashboard)
	patients.POST("/appointments", pc.BookAppointment)
	patients.GET("/appointments", pc.Appointments)
	patients.GET("/records", pc.MedicalRecords)
}
