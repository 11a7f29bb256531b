package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthzHandler reports service liveness
func HealthzHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
