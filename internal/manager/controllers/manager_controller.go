package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	"github.com/c14220110/hms-backend/internal/common/response"
	"github.com/c14220110/hms-backend/internal/manager/models"
	"github.com/c14220110/hms-backend/internal/manager/services"
)

type ManagerController struct {
	Service  *services.ManagerService
	Settings *services.SettingsService
}

func NewManagerController(service *services.ManagerService, settings *services.SettingsService) *ManagerController {
	return &ManagerController{Service: service, Settings: settings}
}

func writeError(c echo.Context, prefix string, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrMessageNotFound):
		return response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSelfChange):
		return response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, services.ErrInvalidSettings), errors.Is(err, services.ErrEmptyResponse):
		return response.Error(c, http.StatusBadRequest, err.Error())
	}
	return response.Error(c, http.StatusInternalServerError, prefix+": "+err.Error())
}

func pathID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil && id > 0
}

func (mc *ManagerController) Dashboard(c echo.Context) error {
	data, err := mc.Service.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, "Failed to load manager dashboard", err)
	}
	return response.JSON(c, http.StatusOK, "Manager dashboard retrieved successfully", data)
}

func (mc *ManagerController) Users(c echo.Context) error {
	data, err := mc.Service.Users(c.Request().Context())
	if err != nil {
		return writeError(c, "Failed to load users", err)
	}
	return response.JSON(c, http.StatusOK, "Users retrieved successfully", data)
}

func (mc *ManagerController) UpdateUserRole(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid user id")
	}
	var req models.RoleUpdateRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)
	if err := mc.Service.UpdateUserRole(c.Request().Context(), claims.UserID, id, req.Role); err != nil {
		return writeError(c, "Failed to update role", err)
	}
	return response.JSON(c, http.StatusOK, "User role updated to "+req.Role, nil)
}

func (mc *ManagerController) SetUserActive(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid user id")
	}
	var req models.ActiveRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)
	if err := mc.Service.SetUserActive(c.Request().Context(), claims.UserID, id, req.IsActive); err != nil {
		return writeError(c, "Failed to update user status", err)
	}
	msg := "User deactivated"
	if req.IsActive {
		msg = "User activated"
	}
	return response.JSON(c, http.StatusOK, msg, nil)
}

func (mc *ManagerController) Doctors(c echo.Context) error {
	data, err := mc.Service.Doctors(c.Request().Context())
	if err != nil {
		return writeError(c, "Failed to load doctors", err)
	}
	return response.JSON(c, http.StatusOK, "Doctors retrieved successfully", data)
}

func (mc *ManagerController) Patients(c echo.Context) error {
	data, err := mc.Service.Patients(c.Request().Context())
	if err != nil {
		return writeError(c, "Failed to load patients", err)
	}
	return response.JSON(c, http.StatusOK, "Patients retrieved successfully", data)
}

func (mc *ManagerController) FinancialReport(c echo.Context) error {
	data, err := mc.Service.FinancialReport(c.Request().Context(), c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		return writeError(c, "Failed to build financial report", err)
	}
	return response.JSON(c, http.StatusOK, "Financial report generated", data)
}

func (mc *ManagerController) GetSettings(c echo.Context) error {
	data, err := mc.Settings.Settings(c.Request().Context())
	if err != nil {
		return writeError(c, "Failed to load settings", err)
	}
	return response.JSON(c, http.StatusOK, "Settings retrieved successfully", data)
}

func (mc *ManagerController) UpdateSettings(c echo.Context) error {
	var req models.SettingsRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)
	data, err := mc.Settings.UpdateSettings(c.Request().Context(), claims.UserID, req)
	if err != nil {
		return writeError(c, "Failed to update settings", err)
	}
	return response.JSON(c, http.StatusOK, "Settings updated successfully", data)
}

func (mc *ManagerController) ActivityLogs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	data, err := mc.Settings.ActivityLogs(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, "Failed to load activity logs", err)
	}
	return response.JSON(c, http.StatusOK, "Activity logs retrieved successfully", data)
}

func (mc *ManagerController) Messages(c echo.Context) error {
	data, err := mc.Settings.Messages(c.Request().Context())
	if err != nil {
		return writeError(c, "Failed to load messages", err)
	}
	return response.JSON(c, http.StatusOK, "Messages retrieved successfully", data)
}

func (mc *ManagerController) RespondMessage(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid message id")
	}
	var req models.RespondRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)
	if err := mc.Settings.RespondMessage(c.Request().Context(), claims.UserID, id, req.Response); err != nil {
		return writeError(c, "Failed to respond to message", err)
	}
	return response.JSON(c, http.StatusOK, "Response saved", nil)
}

func (mc *ManagerController) StaffDashboard(c echo.Context) error {
	claims := middlewares.CurrentClaims(c)
	data, err := mc.Settings.StaffDashboard(c.Request().Context(), claims.UserID)
	if err != nil {
		return writeError(c, "Failed to load staff dashboard", err)
	}
	return response.JSON(c, http.StatusOK, "Staff dashboard retrieved successfully", data)
}
