package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"vitalite_portal_go/config"
	"vitalite_portal_go/db"
	"vitalite_portal_go/middleware"
	"vitalite_portal_go/models"
	"vitalite_portal_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = testDB.AutoMigrate(
		&models.CaseRecord{},
		&models.User{},
		&models.Session{},
	)
	require.NoError(t, err)

	// Set global DB
	db.DB = testDB

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:   "test",
		EmailTestMode: true,
		UploadDir:     testUploadDir,
	})

	return e, c, rec
}

const testUploadDir = "tmp/test_uploads"

func createUserFixture(t *testing.T, database *gorm.DB, username, password, role string) *models.User {
	hash, err := services.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Password: hash,
		Role:     role,
		Region:   models.RegionAll,
		Active:   true,
	}
	require.NoError(t, database.Create(user).Error)
	return user
}

func actAs(c echo.Context, user *models.User) {
	c.Set(middleware.ContextKeyUser, user)
}
