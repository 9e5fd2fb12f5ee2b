package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/response"
	"github.com/c14220110/hms-backend/internal/labs/models"
	"github.com/c14220110/hms-backend/internal/labs/services"
)

type LabController struct {
	Service *services.LabService
}

func NewLabController(service *services.LabService) *LabController {
	return &LabController{Service: service}
}

func (lc *LabController) Dashboard(c echo.Context) error {
	data, err := lc.Service.Dashboard(c.Request().Context())
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to load lab dashboard: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Lab dashboard retrieved successfully", data)
}

func (lc *LabController) SubmitResult(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid lab request id")
	}
	var req models.ResultRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}

	err = lc.Service.SubmitResult(c.Request().Context(), id, req)
	switch {
	case errors.Is(err, services.ErrFindingsNeeded):
		return response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrLabNotFound):
		return response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrLabNotPaid):
		return response.Error(c, http.StatusConflict, err.Error())
	case err != nil:
		return response.Error(c, http.StatusInternalServerError, "Failed to submit result: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Results submitted successfully",
		map[string]interface{}{"lab_request_id": id, "status": "completed"})
}

func (lc *LabController) Reagents(c echo.Context) error {
	data, err := lc.Service.Reagents(c.Request().Context())
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to retrieve reagents: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Reagents retrieved successfully", data)
}

func (lc *LabController) AddReagent(c echo.Context) error {
	var req models.ReagentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	id, err := lc.Service.AddReagent(c.Request().Context(), req)
	if errors.Is(err, services.ErrInvalidQuantity) {
		return response.Error(c, http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to add reagent: "+err.Error())
	}
	return response.JSON(c, http.StatusCreated, "Reagent added successfully", map[string]int{"id": id})
}

func (lc *LabController) Restock(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid reagent id")
	}
	var req models.RestockRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	err = lc.Service.Restock(c.Request().Context(), id, req.Quantity)
	switch {
	case errors.Is(err, services.ErrInvalidQuantity):
		return response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrReagentNotFound):
		return response.Error(c, http.StatusNotFound, err.Error())
	case err != nil:
		return response.Error(c, http.StatusInternalServerError, "Failed to restock reagent: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Reagent restocked", nil)
}
