// Package response writes the {"status","message","data"} envelope every endpoint returns.
package response

import (
	"github.com/labstack/echo/v4"
)

func JSON(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, map[string]interface{}{
		"status":  code,
		"message": message,
		"data":    data,
	})
}

func Error(c echo.Context, code int, message string) error {
	return JSON(c, code, message, nil)
}
