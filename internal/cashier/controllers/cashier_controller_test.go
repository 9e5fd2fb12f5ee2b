package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/hms-backend/internal/cashier/services"
	"github.com/c14220110/hms-backend/internal/common/middlewares"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/paystack"
	"github.com/c14220110/hms-backend/pkg/utils"
)

type downGateway struct{}

func (downGateway) VerifyTransaction(context.Context, string) (*paystack.Transaction, error) {
	return nil, errors.New("connection refused")
}

func TestVerifyPaystack_GatewayDownIs502(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE paystack_reference = ?`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	cc := NewCashierController(services.NewCashierService(db, downGateway{}, "", events.Nop{}, zerolog.Nop()))
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/cashier/paystack/verify", strings.NewReader(`{"reference":"ref_9","bill_id":5}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(string(middlewares.ContextKeyClaims), &utils.Claims{UserID: 3, Role: "patient"})

	require.NoError(t, cc.VerifyPaystack(c))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "payment gateway unavailable")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessPayment_BadBillID(t *testing.T) {
	cc := NewCashierController(nil)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)), rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, cc.ProcessPayment(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
