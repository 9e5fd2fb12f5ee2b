package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	"github.com/c14220110/hms-backend/internal/common/repository"
	"github.com/c14220110/hms-backend/internal/common/response"
	"github.com/c14220110/hms-backend/internal/doctors/models"
	"github.com/c14220110/hms-backend/internal/doctors/services"
)

type DoctorController struct {
	Service *services.DoctorService
}

func NewDoctorController(service *services.DoctorService) *DoctorController {
	return &DoctorController{Service: service}
}

// writeError maps workflow errors to HTTP statuses.
func writeError(c echo.Context, action string, err error) error {
	switch {
	case errors.Is(err, repository.ErrVisitNotFound), errors.Is(err, services.ErrPatientNotFound):
		return response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotYourVisit):
		return response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrInvalidTransition):
		return response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrInvalidStatus),
		errors.Is(err, services.ErrDiagnosisNeeded),
		errors.Is(err, services.ErrInvalidOrder):
		return response.Error(c, http.StatusBadRequest, err.Error())
	}
	return response.Error(c, http.StatusInternalServerError, action+": "+err.Error())
}

func pathID(c echo.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	return id, err == nil && id > 0
}

func (dc *DoctorController) Dashboard(c echo.Context) error {
	claims := middlewares.CurrentClaims(c)
	data, err := dc.Service.Dashboard(c.Request().Context(), claims.UserID)
	if err != nil {
		return writeError(c, "Failed to load dashboard", err)
	}
	return response.JSON(c, http.StatusOK, "Dashboard retrieved successfully", data)
}

func (dc *DoctorController) Patients(c echo.Context) error {
	claims := middlewares.CurrentClaims(c)
	data, err := dc.Service.Patients(c.Request().Context(), claims.UserID)
	if err != nil {
		return writeError(c, "Failed to retrieve patients", err)
	}
	return response.JSON(c, http.StatusOK, "Patients retrieved successfully", data)
}

func (dc *DoctorController) PatientDetail(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid patient id")
	}
	claims := middlewares.CurrentClaims(c)
	data, err := dc.Service.PatientDetail(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return writeError(c, "Failed to retrieve patient", err)
	}
	return response.JSON(c, http.StatusOK, "Patient retrieved successfully", data)
}

func (dc *DoctorController) Appointments(c echo.Context) error {
	claims := middlewares.CurrentClaims(c)
	data, err := dc.Service.Appointments(c.Request().Context(), claims.UserID)
	if err != nil {
		return writeError(c, "Failed to retrieve appointments", err)
	}
	return response.JSON(c, http.StatusOK, "Appointments retrieved successfully", data)
}

func (dc *DoctorController) StartConsultation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid appointment id")
	}
	claims := middlewares.CurrentClaims(c)
	if err := dc.Service.StartConsultation(c.Request().Context(), claims.UserID, id); err != nil {
		return writeError(c, "Failed to start consultation", err)
	}
	return response.JSON(c, http.StatusOK, "Consultation started",
		map[string]interface{}{"appointment_id": id, "status": "consulting"})
}

func (dc *DoctorController) SubmitConsultation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid appointment id")
	}
	var req models.ConsultationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)

	result, err := dc.Service.SubmitConsultation(c.Request().Context(), claims.UserID, id, req)
	if err != nil {
		return writeError(c, "Failed to submit consultation", err)
	}
	msg := "Consultation completed"
	if len(result.LabRequestIDs) > 0 {
		msg = "Consultation saved. Lab tests sent to cashier for payment."
	}
	return response.JSON(c, http.StatusOK, msg, result)
}

func (dc *DoctorController) UpdateAppointmentStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid appointment id")
	}
	var req models.StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)
	if err := dc.Service.UpdateAppointmentStatus(c.Request().Context(), claims.UserID, id, req); err != nil {
		return writeError(c, "Failed to update appointment", err)
	}
	return response.JSON(c, http.StatusOK, "Appointment status updated to "+req.Status,
		map[string]interface{}{"appointment_id": id, "status": req.Status})
}

func (dc *DoctorController) AddMedicalRecord(c echo.Context) error {
	var req models.MedicalRecordRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)
	id, err := dc.Service.AddMedicalRecord(c.Request().Context(), claims.UserID, req)
	if err != nil {
		return writeError(c, "Failed to add medical record", err)
	}
	return response.JSON(c, http.StatusCreated, "Medical record added successfully", map[string]int{"id": id})
}
