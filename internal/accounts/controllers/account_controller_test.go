package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/hms-backend/internal/accounts/services"
	"github.com/c14220110/hms-backend/internal/common/middlewares"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/pkg/utils"
)

func TestLogin_BadCredentialsIs401(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = ?`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ac := NewAccountController(services.NewAccountService(db, "secret", time.Hour, zerolog.Nop()))
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/accounts/login", strings.NewReader(`{"username":"x","password":"y"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, ac.Login(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(401), body["status"])
	assert.Nil(t, body["data"])
}

func TestDashboard_ResolvesRolePath(t *testing.T) {
	ac := NewAccountController(nil)
	e := echo.New()

	for role, want := range map[string]string{
		cmodels.RoleNurse:   "/api/nurses/dashboard",
		cmodels.RoleCashier: "/api/cashier/dashboard",
		"janitor":           "/",
	} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/accounts/dashboard", nil), rec)
		c.Set(string(middlewares.ContextKeyClaims), &utils.Claims{UserID: 1, Role: role})

		require.NoError(t, ac.Dashboard(c))
		assert.Contains(t, rec.Body.String(), `"redirect":"`+want+`"`)
	}
}
