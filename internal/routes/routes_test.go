package routes

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/hms-backend/config"
	"github.com/c14220110/hms-backend/pkg/utils"
	"github.com/c14220110/hms-backend/ws"
)

func setup(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := echo.New()
	Init(e, db, Deps{
		Config: &config.Config{JWTSecret: "secret", JWTTTL: time.Hour},
		Hub:    ws.NewHub(zerolog.Nop()),
		Log:    zerolog.Nop(),
	})
	return e, mock
}

func TestInit_RegistersDepartments(t *testing.T) {
	e, _ := setup(t)

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /metrics",
		"GET /ws",
		"POST /api/accounts/login",
		"POST /api/patients/appointments",
		"POST /api/doctors/appointments/:id/consultation",
		"POST /api/pharmacy/prescriptions/:id/dispense",
		"POST /api/cashier/bills/:id/payments",
		"POST /api/cashier/paystack/verify",
		"POST /api/inpatient/admissions/:id/discharge",
		"GET /api/manager/reports/financial",
		"GET /api/staff/dashboard",
	} {
		assert.True(t, registered[want], want)
	}
}

func TestHealth_PingsDatabase(t *testing.T) {
	e, mock := setup(t)
	mock.ExpectPing()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaintenance_BlocksStaffAllowsManager(t *testing.T) {
	e, mock := setup(t)
	settings := regexp.QuoteMeta(`SELECT maintenance_mode FROM hospital_settings WHERE id = 1`)

	cashierToken, err := utils.GenerateJWTToken("secret", 5, "cashier", "ama", time.Now().Add(time.Hour))
	require.NoError(t, err)
	mock.ExpectQuery(settings).WillReturnRows(sqlmock.NewRows([]string{"maintenance_mode"}).AddRow(true))

	req := httptest.NewRequest(http.MethodGet, "/api/cashier/payments", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+cashierToken)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	managerToken, err := utils.GenerateJWTToken("secret", 1, "manager", "boss", time.Now().Add(time.Hour))
	require.NoError(t, err)
	mock.ExpectQuery(settings).WillReturnRows(sqlmock.NewRows([]string{"maintenance_mode"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments py JOIN bills b`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req = httptest.NewRequest(http.MethodGet, "/api/cashier/payments", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+managerToken)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
