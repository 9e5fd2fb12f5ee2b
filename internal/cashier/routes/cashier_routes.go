package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/cashier/controllers"
	"github.com/c14220110/hms-backend/internal/common/middlewares"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
)

func RegisterCashierRoutes(api *echo.Group, cc *controllers.CashierController, secret string) {
	cashier := api.Group("/cashier", middlewares.JWTMiddleware(secret))
	desk := middlewares.RequireRoles(cmodels.RoleCashier)
	withPatient := middlewares.RequireRoles(cmodels.RoleCashier, cmodels.RolePatient)

	cashier.GET("/dashboard", cc.Dashboard, desk)
	cashier.GET("/bills", cc.Bills, desk)
	cashier.POST("/bills", cc.CreateBill, desk)
	cashier.GET("/bills/:id", cc.BillDetail, withPatient)
	cashier.POST("/bills/:id/payments", cc.ProcessPayment, desk)
	cashier.POST("/paystack/verify", cc.VerifyPaystack, withPatient)
	cashier.GET("/payments", cc.Payments, desk)
	cashier.GET("/reports/daily", cc.DailyReport, desk)
	cashier.POST("/labs/:id/pay", cc.MarkLabPaid, desk)
	cashier.POST("/prescriptions/:id/pay", cc.MarkPrescriptionPaid, desk)
}
