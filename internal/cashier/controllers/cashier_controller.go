package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/cashier/models"
	"github.com/c14220110/hms-backend/internal/cashier/services"
	"github.com/c14220110/hms-backend/internal/common/middlewares"
	"github.com/c14220110/hms-backend/internal/common/repository"
	"github.com/c14220110/hms-backend/internal/common/response"
)

type CashierController struct {
	Service *services.CashierService
}

func NewCashierController(service *services.CashierService) *CashierController {
	return &CashierController{Service: service}
}

func pathID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil && id > 0
}

func writeError(c echo.Context, prefix string, err error) error {
	switch {
	case errors.Is(err, services.ErrBillNotFound), errors.Is(err, services.ErrPatientNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		return response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrBillClosed), errors.Is(err, services.ErrOrderNotPending),
		errors.Is(err, services.ErrReferenceUsed):
		return response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidPayment), errors.Is(err, services.ErrInvalidMethod),
		errors.Is(err, services.ErrReferenceRequired), errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrVerificationFailed),
		errors.Is(err, repository.ErrInvalidAmount), errors.Is(err, repository.ErrInvalidBill):
		return response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrGateway):
		return response.Error(c, http.StatusBadGateway, err.Error())
	}
	return response.Error(c, http.StatusInternalServerError, prefix+": "+err.Error())
}

func (cc *CashierController) Dashboard(c echo.Context) error {
	data, err := cc.Service.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, "Failed to load cashier dashboard", err)
	}
	return response.JSON(c, http.StatusOK, "Cashier dashboard retrieved successfully", data)
}

func (cc *CashierController) CreateBill(c echo.Context) error {
	var req models.CreateBillRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)
	bill, err := cc.Service.CreateBill(c.Request().Context(), claims.UserID, req)
	if err != nil {
		return writeError(c, "Failed to create bill", err)
	}
	msg := "Bill " + bill.Bill.BillNumber + " created"
	if req.CollectPayment {
		msg = "Bill " + bill.Bill.BillNumber + " created and paid"
	}
	return response.JSON(c, http.StatusCreated, msg, bill)
}

func (cc *CashierController) BillDetail(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid bill id")
	}
	claims := middlewares.CurrentClaims(c)
	data, err := cc.Service.BillDetail(c.Request().Context(), id, claims.UserID, claims.Role)
	if err != nil {
		return writeError(c, "Failed to load bill", err)
	}
	return response.JSON(c, http.StatusOK, "Bill retrieved successfully", data)
}

func (cc *CashierController) ProcessPayment(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid bill id")
	}
	var req models.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)
	res, err := cc.Service.ProcessPayment(c.Request().Context(), claims.UserID, id, req)
	if err != nil {
		return writeError(c, "Failed to process payment", err)
	}
	return response.JSON(c, http.StatusCreated, "Payment processed successfully", res)
}

func (cc *CashierController) VerifyPaystack(c echo.Context) error {
	var req models.PaystackVerifyRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)
	res, err := cc.Service.VerifyPaystack(c.Request().Context(), claims.UserID, req)
	if err != nil {
		return writeError(c, "Failed to verify payment", err)
	}
	return response.JSON(c, http.StatusOK, "Payment verified successfully", res)
}

func (cc *CashierController) MarkLabPaid(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid lab request id")
	}
	var req models.LabPaymentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body")
	}
	claims := middlewares.CurrentClaims(c)
	res, err := cc.Service.MarkLabPaid(c.Request().Context(), claims.UserID, id, req.Amount)
	if err != nil {
		return writeError(c, "Failed to record lab payment", err)
	}
	return response.JSON(c, http.StatusOK, "Lab test marked as paid", res)
}

func (cc *CashierController) MarkPrescriptionPaid(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.Error(c, http.StatusBadRequest, "Invalid prescription id")
	}
	claims := middlewares.CurrentClaims(c)
	res, err := cc.Service.MarkPrescriptionPaid(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return writeError(c, "Failed to record prescription payment", err)
	}
	return response.JSON(c, http.StatusOK, "Prescription marked as paid", res)
}

func (cc *CashierController) Bills(c echo.Context) error {
	data, err := cc.Service.Bills(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return writeError(c, "Failed to load bills", err)
	}
	return response.JSON(c, http.StatusOK, "Bills retrieved successfully", data)
}

func (cc *CashierController) Payments(c echo.Context) error {
	data, err := cc.Service.Payments(c.Request().Context())
	if err != nil {
		return writeError(c, "Failed to load payments", err)
	}
	return response.JSON(c, http.StatusOK, "Payments retrieved successfully", data)
}

func (cc *CashierController) DailyReport(c echo.Context) error {
	data, err := cc.Service.DailyReport(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return writeError(c, "Failed to build daily report", err)
	}
	return response.JSON(c, http.StatusOK, "Daily report generated", data)
}
