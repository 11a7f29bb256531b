package handlers

import (
	"net/http"
	"time"

	"vitalite_portal_go/db"
	"vitalite_portal_go/services"

	"github.com/labstack/echo/v4"
)

// ExportCasesCSVHandler streams the full case collection as CSV
func ExportCasesCSVHandler(c echo.Context) error {
	cases, err := services.GetAllCases(db.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch cases",
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=vitalite_all_cases.csv")
	c.Response().WriteHeader(http.StatusOK)

	return services.WriteCasesCSV(c.Response().Writer, cases)
}

// ExportCasesXLSXHandler streams the full case collection as an Excel workbook
func ExportCasesXLSXHandler(c echo.Context) error {
	cases, err := services.GetAllCases(db.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch cases",
		})
	}

	f, err := services.ExportCasesXLSX(cases)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to build export",
		})
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=vitalite_all_cases.xlsx")
	c.Response().WriteHeader(http.StatusOK)

	return f.Write(c.Response().Writer)
}

// KPIReportHandler returns the plain-text KPI summary report
func KPIReportHandler(c echo.Context) error {
	cases, err := services.GetAllCases(db.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch cases",
		})
	}

	report := services.BuildKPIReport(services.ComputeMetrics(cases), time.Now())

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=vitalite_kpi_report.txt")
	return c.String(http.StatusOK, report)
}
