package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/pkg/utils"
)

const testSecret = "test-secret"

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWTToken(testSecret, 7, role, "u7", time.Now().Add(time.Hour))
	require.NoError(t, err)
	return tok
}

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

// serve runs one request through a tiny echo app guarded by mws.
func serve(t *testing.T, path, bearer string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET(path, ok, mws...)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	rec := serve(t, "/x", "", JWTMiddleware(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization header missing")
}

func TestJWTMiddleware_BadToken(t *testing.T) {
	rec := serve(t, "/x", "not-a-jwt", JWTMiddleware(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_StoresClaims(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error {
		claims := CurrentClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, 7, claims.UserID)
		assert.Equal(t, models.RoleNurse, claims.Role)
		return c.NoContent(http.StatusNoContent)
	}, JWTMiddleware(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, models.RoleNurse))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	guard := []echo.MiddlewareFunc{JWTMiddleware(testSecret), RequireRoles(models.RolePharmacist)}

	assert.Equal(t, http.StatusOK, serve(t, "/pharmacy", token(t, models.RolePharmacist), guard...).Code)
	assert.Equal(t, http.StatusOK, serve(t, "/pharmacy", token(t, models.RoleManager), guard...).Code)
	assert.Equal(t, http.StatusForbidden, serve(t, "/pharmacy", token(t, models.RoleDoctor), guard...).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, "/pharmacy", "", guard...).Code)
}

func TestRequireRolesStrict_NoManagerBypass(t *testing.T) {
	guard := []echo.MiddlewareFunc{JWTMiddleware(testSecret), RequireRolesStrict(models.RoleLabTech)}

	assert.Equal(t, http.StatusOK, serve(t, "/labs", token(t, models.RoleLabTech), guard...).Code)
	assert.Equal(t, http.StatusForbidden, serve(t, "/labs", token(t, models.RoleManager), guard...).Code)
}

type fakeSettings struct {
	on  bool
	err error
}

func (f fakeSettings) MaintenanceMode(context.Context) (bool, error) { return f.on, f.err }

func TestMaintenance(t *testing.T) {
	mw := Maintenance(fakeSettings{on: true}, testSecret, zerolog.Nop())

	assert.Equal(t, http.StatusServiceUnavailable, serve(t, "/api/doctors/dashboard", token(t, models.RoleDoctor), mw).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, "/api/doctors/dashboard", "", mw).Code)
	assert.Equal(t, http.StatusOK, serve(t, "/api/manager/dashboard", token(t, models.RoleManager), mw).Code)
	assert.Equal(t, http.StatusOK, serve(t, "/api/accounts/login", "", mw).Code)
	assert.Equal(t, http.StatusOK, serve(t, "/health", "", mw).Code)
}

func TestMaintenance_OffOrUnavailable(t *testing.T) {
	off := Maintenance(fakeSettings{}, testSecret, zerolog.Nop())
	assert.Equal(t, http.StatusOK, serve(t, "/api/labs/dashboard", "", off).Code)

	broken := Maintenance(fakeSettings{err: errors.New("db down")}, testSecret, zerolog.Nop())
	assert.Equal(t, http.StatusOK, serve(t, "/api/labs/dashboard", "", broken).Code)
}

func TestRecovery_ReturnsEnvelope(t *testing.T) {
	e := echo.New()
	e.GET("/boom", func(c echo.Context) error { panic("kaboom") }, Recovery(zerolog.Nop()))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":500`)
}

func TestLoggerAndMetrics_PassThrough(t *testing.T) {
	rec := serve(t, "/ping", "", Logger(zerolog.Nop()), Metrics())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
