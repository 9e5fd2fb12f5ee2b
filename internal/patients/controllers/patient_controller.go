package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	"github.com/c14220110/hms-backend/internal/common/response"
	"github.com/c14220110/hms-backend/internal/patients/models"
	"github.com/c14220110/hms-backend/internal/patients/services"
)

type PatientController struct {
	Service *services.PatientService
}

func NewPatientController(service *services.PatientService) *PatientController {
	return &PatientController{Service: service}
}

func (pc *PatientController) Dashboard(c echo.Context) error {
	claims := middlewares.CurrentClaims(c)
	data, err := pc.Service.Dashboard(c.Request().Context(), claims.UserID)
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to load dashboard: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Dashboard retrieved successfully", data)
}

func (pc *PatientController) BookAppointment(c echo.Context) error {
	var req models.BookAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)

	appt, err := pc.Service.BookAppointment(c.Request().Context(), claims.UserID, req)
	switch {
	case errors.Is(err, services.ErrInvalidSchedule), errors.Is(err, services.ErrPastDate):
		return response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDoctorNotFound):
		return response.Error(c, http.StatusNotFound, err.Error())
	case err != nil:
		return response.Error(c, http.StatusInternalServerError, "Failed to book appointment: "+err.Error())
	}
	return response.JSON(c, http.StatusCreated, "Appointment booked successfully", appt)
}

func (pc *PatientController) Appointments(c echo.Context) error {
	claims := middlewares.CurrentClaims(c)
	data, err := pc.Service.Appointments(c.Request().Context(), claims.UserID)
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to retrieve appointments: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Appointments retrieved successfully", data)
}

func (pc *PatientController) MedicalRecords(c echo.Context) error {
	claims := middlewares.CurrentClaims(c)
	data, err := pc.Service.MedicalRecords(c.Request().Context(), claims.UserID)
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to retrieve medical records: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Medical records retrieved successfully", data)
}
