package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	"github.com/c14220110/hms-backend/internal/common/repository"
	"github.com/c14220110/hms-backend/internal/common/response"
	"github.com/c14220110/hms-backend/internal/nurses/models"
	"github.com/c14220110/hms-backend/internal/nurses/services"
)

type NurseController struct {
	Service *services.TriageService
}

func NewNurseController(service *services.TriageService) *NurseController {
	return &NurseController{Service: service}
}

func (nc *NurseController) Dashboard(c echo.Context) error {
	data, err := nc.Service.Queue(c.Request().Context())
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to retrieve triage queue: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Triage queue retrieved successfully", data)
}

func (nc *NurseController) EnterVitals(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid appointment id")
	}
	var req models.TriageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}

	err = nc.Service.EnterVitals(c.Request().Context(), id, req)
	switch {
	case errors.Is(err, services.ErrInvalidVitals):
		return response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrVisitNotFound):
		return response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrInvalidTransition):
		return response.Error(c, http.StatusConflict, "Vitals were already entered for this appointment")
	case err != nil:
		return response.Error(c, http.StatusInternalServerError, "Failed to save vitals: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Vitals recorded. Patient is ready for the doctor.",
		map[string]interface{}{"appointment_id": id, "status": "ready"})
}

func (nc *NurseController) RecordVitals(c echo.Context) error {
	var req models.VitalsRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)

	v, err := nc.Service.RecordVitals(c.Request().Context(), claims.UserID, req)
	switch {
	case errors.Is(err, services.ErrInvalidVitals):
		return response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrPatientNotFound):
		return response.Error(c, http.StatusNotFound, err.Error())
	case err != nil:
		return response.Error(c, http.StatusInternalServerError, "Failed to record vitals: "+err.Error())
	}
	return response.JSON(c, http.StatusCreated, "Vitals recorded successfully", v)
}
