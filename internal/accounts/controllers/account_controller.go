package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/accounts/models"
	"github.com/c14220110/hms-backend/internal/accounts/services"
	"github.com/c14220110/hms-backend/internal/common/middlewares"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/common/response"
)

type AccountController struct {
	Service *services.AccountService
}

func NewAccountController(service *services.AccountService) *AccountController {
	return &AccountController{Service: service}
}

func (ac *AccountController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	creatorRole := ""
	if claims := middlewares.CurrentClaims(c); claims != nil {
		creatorRole = claims.Role
	}

	user, err := ac.Service.Register(c.Request().Context(), req, creatorRole)
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		return response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		return response.Error(c, http.StatusBadRequest, err.Error())
	case err != nil:
		return response.Error(c, http.StatusInternalServerError, "Failed to register user: "+err.Error())
	}
	return response.JSON(c, http.StatusCreated, "Registration successful", user)
}

func (ac *AccountController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}

	result, err := ac.Service.Login(c.Request().Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return response.Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrInactiveAccount):
		return response.Error(c, http.StatusForbidden, err.Error())
	case err != nil:
		return response.Error(c, http.StatusInternalServerError, "Login failed: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Welcome back, "+result.User.FullName()+"!", result)
}

func (ac *AccountController) Logout(c echo.Context) error {
	claims := middlewares.CurrentClaims(c)
	if err := ac.Service.Logout(c.Request().Context(), claims.UserID); err != nil {
		return response.Error(c, http.StatusInternalServerError, "Logout failed: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "You have been logged out", nil)
}

func (ac *AccountController) Profile(c echo.Context) error {
	claims := middlewares.CurrentClaims(c)
	profile, err := ac.Service.Profile(c.Request().Context(), claims.UserID)
	if errors.Is(err, services.ErrUserNotFound) {
		return response.Error(c, http.StatusNotFound, err.Error())
	}
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to load profile: "+err.Error())
	}
	return response.JSON(c, http.StatusOK, "Profile retrieved successfully", profile)
}

// Dashboard tells the client which dashboard endpoint belongs to the caller's role.
func (ac *AccountController) Dashboard(c echo.Context) error {
	claims := middlewares.CurrentClaims(c)
	path, ok := cmodels.DashboardPath(claims.Role)
	if !ok {
		return response.JSON(c, http.StatusOK, "Unknown user role. Please contact the administrator.",
			map[string]string{"redirect": path})
	}
	return response.JSON(c, http.StatusOK, "Dashboard resolved", map[string]string{"redirect": path})
}

func (ac *AccountController) Contact(c echo.Context) error {
	var req models.ContactRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	id, err := ac.Service.SubmitContact(c.Request().Context(), req)
	if errors.Is(err, services.ErrInvalidInput) {
		return response.Error(c, http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "Failed to send message: "+err.Error())
	}
	return response.JSON(c, http.StatusCreated, "Your message has been sent. We will get back to you soon!",
		map[string]int{"id": id})
}
