package handlers

import (
	"net/http"

	"vitalite_portal_go/db"
	"vitalite_portal_go/services"

	"github.com/labstack/echo/v4"
)

// DashboardStats is the dashboard payload: aggregate KPIs plus the WhatsApp
// response latency for every case where it is defined.
type DashboardStats struct {
	services.Metrics
	WhatsAppResponseMinutes map[string]float64 `json:"whatsapp_response_minutes"`
}

// DashboardHandler returns the KPI dashboard data
func DashboardHandler(c echo.Context) error {
	cases, err := services.GetAllCases(db.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch cases",
		})
	}

	stats := DashboardStats{
		Metrics:                 services.ComputeMetrics(cases),
		WhatsAppResponseMinutes: make(map[string]float64),
	}

	for i := range cases {
		if minutes, ok := services.WhatsAppResponseMinutes(&cases[i]); ok {
			stats.WhatsAppResponseMinutes[cases[i].CaseID] = minutes
		}
	}

	return c.JSON(http.StatusOK, stats)
}
