package handlers

import (
	"errors"
	"net/http"

	"vitalite_portal_go/db"
	"vitalite_portal_go/middleware"
	"vitalite_portal_go/services"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

// sanitizer strips markup from reporter-supplied free text before storage
var sanitizer = bluemonday.StrictPolicy()

// CreateCaseHandler handles new case intake
func CreateCaseHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	input := new(services.CaseInput)
	if err := c.Bind(input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	input.Name = sanitizer.Sanitize(input.Name)
	input.Description = sanitizer.Sanitize(input.Description)
	input.ResolutionNotes = sanitizer.Sanitize(input.ResolutionNotes)

	newCase, err := services.CreateCase(db.DB, input, currentUser.Username)
	if err != nil {
		if services.IsValidationError(err) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to save case",
		})
	}

	return c.JSON(http.StatusCreated, newCase)
}

// GetCasesHandler returns the case list, optionally filtered by status.
// The Open filter also matches legacy Escalated rows.
func GetCasesHandler(c echo.Context) error {
	filter := c.QueryParam("status")
	switch filter {
	case "", services.StatusFilterAll, services.StatusFilterOpen, services.StatusFilterClosed:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid status filter. Must be one of: All, Open, Closed",
		})
	}

	cases, err := services.GetAllCases(db.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch cases",
		})
	}

	return c.JSON(http.StatusOK, services.FilterCasesByStatus(cases, filter))
}

// GetCaseHandler returns a single case with its record version
func GetCaseHandler(c echo.Context) error {
	caseID := c.Param("id")

	storedCase, version, err := services.GetCase(db.DB, caseID)
	if err != nil {
		if errors.Is(err, services.ErrCaseNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Case not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch case",
		})
	}

	response := map[string]interface{}{
		"case":    storedCase,
		"version": version,
	}
	if minutes, ok := services.WhatsAppResponseMinutes(storedCase); ok {
		response["whatsapp_response_minutes"] = minutes
	}

	return c.JSON(http.StatusOK, response)
}

type resolveCaseRequest struct {
	Notes  string `json:"notes" form:"notes"`
	Action string `json:"action" form:"action"`
}

// ResolveCaseHandler closes or escalates a case
func ResolveCaseHandler(c echo.Context) error {
	caseID := c.Param("id")

	var req resolveCaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	req.Notes = sanitizer.Sanitize(req.Notes)

	resolved, err := services.ResolveCase(db.DB, caseID, req.Notes, req.Action)
	if err != nil {
		switch {
		case services.IsValidationError(err):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
		case errors.Is(err, services.ErrCaseNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Case not found",
			})
		case errors.Is(err, services.ErrConflict):
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "Case was modified by another user. Reload and try again.",
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to save case",
			})
		}
	}

	return c.JSON(http.StatusOK, resolved)
}

// DeleteCaseHandler removes a case. Deleting an already-deleted case succeeds.
func DeleteCaseHandler(c echo.Context) error {
	caseID := c.Param("id")

	if err := services.DeleteCase(db.DB, caseID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete case",
		})
	}

	return c.NoContent(http.StatusNoContent)
}
