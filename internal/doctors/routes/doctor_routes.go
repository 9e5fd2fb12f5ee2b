package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/doctors/controllers"
)

func RegisterDoctorRoutes(api *echo.Group, dc *controllers.DoctorController, secret string) {
	doctors := api.Group("/doctors",
		middlewares.JWTMiddleware(secret),
		middlewares.RequireRolesStrict(cmodels.RoleDoctor))

	doctors.GET("/dashboard", dc.Dashboard)
	doctors.GET("/patients", dc.Patients)
	doctors.GET("/patients/:id", dc.PatientDetail)
	doctors.GET("/appointments", dc.Appointments)
	doctors.POST("/appointments/:id/start", dc.StartConsultation)
	doctors.POST("/appointments/:id/consultation", dc.SubmitConsultation)
	doctors.PUT("/appointments/:id/status", dc.UpdateAppointmentStatus)
	doctors.POST("/records", dc.AddMedicalRecord)
}
