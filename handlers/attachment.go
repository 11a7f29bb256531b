package handlers

import (
	"net/http"

	"vitalite_portal_go/config"
	"vitalite_portal_go/services"

	"github.com/labstack/echo/v4"
)

// UploadAttachmentsHandler stores uploaded screenshots/documents and returns
// the stored filenames. Cases reference attachments by name only.
func UploadAttachmentsHandler(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid multipart form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "No files uploaded",
		})
	}

	uploadDir := "static/uploads"
	if cfg, ok := c.Get("config").(*config.Config); ok {
		uploadDir = cfg.UploadDir
	}

	names := make([]string, 0, len(files))
	for _, fileHeader := range files {
		if err := services.ValidateAttachment(fileHeader); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
		}

		name, err := services.SaveAttachment(fileHeader, uploadDir)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to store attachment",
			})
		}
		names = append(names, name)
	}

	return c.JSON(http.StatusOK, map[string][]string{
		"attachments": names,
	})
}
