package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/accounts/controllers"
	"github.com/c14220110/hms-backend/internal/common/middlewares"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
)

func RegisterAccountRoutes(api *echo.Group, ac *controllers.AccountController, secret string) {
	jwt := middlewares.JWTMiddleware(secret)

	accounts := api.Group("/accounts")
	accounts.POST("/register", ac.Register)
	accounts.POST("/login", ac.Login)
	accounts.POST("/contact", ac.Contact)
	accounts.POST("/logout", ac.Logout, jwt)
	accounts.GET("/profile", ac.Profile, jwt)
	accounts.GET("/dashboard", ac.Dashboard, jwt)
	// managers create staff accounts with an explicit role
	accounts.POST("/users", ac.Register, jwt, middlewares.RequireRolesStrict(cmodels.RoleManager))
}
