package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/hms-backend/internal/common/middlewares"
	cmodels "github.com/c14220110/hms-backend/internal/common/models"
	"github.com/c14220110/hms-backend/internal/labs/controllers"
)

// Lab results are clinical output; managers get no bypass here.
func RegisterLabRoutes(api *echo.Group, lc *controllers.LabController, secret string) {
	labs := api.Group("/labs",
		middlewares.JWTMiddleware(secret),
		middlewares.RequireRolesStrict(cmodels.RoleLabTech))

	labs.GET("/dashboard", lc.Dashboard)
	labs.POST("/requests/:id/result", lc.SubmitResult)
	labs.GET("/reagents", lc.Reagents)
	labs.POST("/reagents", lc.AddReagent)
	labs.POST("/reagents/:id/restock", lc.Restock)
}
