package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	"github.com/c14220110/hms-backend/internal/common/response"
	"github.com/c14220110/hms-backend/internal/inpatient/models"
	"github.com/c14220110/hms-backend/internal/inpatient/services"
)

type WardController struct {
	Service *services.WardService
}

func NewWardController(service *services.WardService) *WardController {
	return &WardController{Service: service}
}

func writeError(c echo.Context, prefix string, err error) error {
	switch {
	case errors.Is(err, services.ErrWardNotFound), errors.Is(err, services.ErrPatientNotFound),
		errors.Is(err, services.ErrAdmissionNotFound):
		return response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrWardFull), errors.Is(err, services.ErrBedTaken),
		errors.Is(err, services.ErrAlreadyAdmitted):
		return response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidWard), errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrInvalidAdmission),
		errors.Is(err, services.ErrInvalidVitals):
		return response.Error(c, http.StatusBadRequest, err.Error())
	}
	return response.Error(c, http.StatusInternalServerError, prefix+": "+err.Error())
}

func admissionID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil && id > 0
}

func (wc *WardController) Wards(c echo.Context) error {
	data, err := wc.Service.Wards(c.Request().Context())
	if err != nil {
		return writeError(c, "Failed to load wards", err)
	}
	return response.JSON(c, http.StatusOK, "Wards retrieved successfully", data)
}

func (wc *WardController) CreateWard(c echo.Context) error {
	var req models.WardRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	ward, err := wc.Service.CreateWard(c.Request().Context(), req)
	if err != nil {
		return writeError(c, "Failed to create ward", err)
	}
	return response.JSON(c, http.StatusCreated, "Ward created successfully", ward)
}

func (wc *WardController) Dashboard(c echo.Context) error {
	data, err := wc.Service.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, "Failed to load ward dashboard", err)
	}
	return response.JSON(c, http.StatusOK, "Ward dashboard retrieved successfully", data)
}

func (wc *WardController) Admit(c echo.Context) error {
	var req models.AdmitRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	adm, err := wc.Service.Admit(c.Request().Context(), req)
	if err != nil {
		return writeError(c, "Failed to admit patient", err)
	}
	return response.JSON(c, http.StatusCreated, adm.PatientName+" admitted to "+adm.WardName, adm)
}

func (wc *WardController) LogVitals(c echo.Context) error {
	id, ok := admissionID(c)
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid admission id")
	}
	var req models.VitalsRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)
	v, err := wc.Service.LogVitals(c.Request().Context(), claims.UserID, id, req)
	if err != nil {
		return writeError(c, "Failed to record vitals", err)
	}
	return response.JSON(c, http.StatusCreated, "Vitals recorded", v)
}

func (wc *WardController) Discharge(c echo.Context) error {
	id, ok := admissionID(c)
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid admission id")
	}
	claims := middlewares.CurrentClaims(c)
	res, err := wc.Service.Discharge(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return writeError(c, "Failed to discharge patient", err)
	}
	msg := "Patient " + res.PatientName + " discharged. Bill generated for " + strconv.Itoa(res.DaysSpent) + " day(s)."
	return response.JSON(c, http.StatusOK, msg, res)
}
