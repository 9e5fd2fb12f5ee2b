package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	"github.com/c14220110/hms-backend/internal/common/response"
	"github.com/c14220110/hms-backend/internal/pharmacy/models"
	"github.com/c14220110/hms-backend/internal/pharmacy/services"
)

type PharmacyController struct {
	Service *services.PharmacyService
}

func NewPharmacyController(service *services.PharmacyService) *PharmacyController {
	return &PharmacyController{Service: service}
}

func (pc *PharmacyController) Dashboard(c echo.Context) error {
	data, err := pc.Service.Dashboard(c.Request().Context())
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to load pharmacy dashboard: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Pharmacy dashboard retrieved successfully", data)
}

func (pc *PharmacyController) AddMedicine(c echo.Context) error {
	var req models.MedicineRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	med, err := pc.Service.AddMedicine(c.Request().Context(), req)
	if errors.Is(err, services.ErrInvalidMedicine) {
		return response.Error(c, http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to add medicine: "+err.Error())
	}
	return response.JSON(c, http.StatusCreated, "New stock registered successfully!", med)
}

func (pc *PharmacyController) Dispense(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid prescription id")
	}
	claims := middlewares.CurrentClaims(c)

	result, err := pc.Service.Dispense(c.Request().Context(), claims.UserID, id)
	switch {
	case errors.Is(err, services.ErrPrescriptionNotFound):
		return response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotPaid), errors.Is(err, services.ErrAlreadyDispensed):
		return response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrExpired), errors.Is(err, services.ErrInsufficientStock):
		return response.Error(c, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		return response.Error(c, http.StatusInternalServerError, "A system error occurred: "+err.Error())
	}
	msg := "Dispensed and logged"
	if !result.Tracked {
		msg = "Dispensed (untracked item logged)"
	}
	return response.JSON(c, http.StatusOK, msg, result)
}

func (pc *PharmacyController) InventoryReport(c echo.Context) error {
	data, err := pc.Service.InventoryReport(c.Request().Context())
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to build inventory report: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Inventory report generated", data)
}

func (pc *PharmacyController) StockAlerts(c echo.Context) error {
	data, err := pc.Service.Alerts(c.Request().Context())
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to load stock alerts: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Stock alerts retrieved successfully", data)
}

func (pc *PharmacyController) AuditLogs(c echo.Context) error {
	data, err := pc.Service.AuditLogs(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to load audit logs: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Audit logs retrieved successfully", data)
}
