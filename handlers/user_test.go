package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vitalite_portal_go/middleware"
	"vitalite_portal_go/models"
	"vitalite_portal_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUsersHandler(t *testing.T) {
	database := setupTestDB(t)
	admin := createUserFixture(t, database, "admin", "adminpass1", models.UserRoleAdmin)
	createUserFixture(t, database, "jbanda", "agentpass1", models.UserRoleAgent)

	_, c, rec := setupEcho(http.MethodGet, "/api/users", nil)
	actAs(c, admin)

	err := GetUsersHandler(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var users []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
	// Hashes never leave the server
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRequireRole_NonAdminRejected(t *testing.T) {
	database := setupTestDB(t)
	agent := createUserFixture(t, database, "jbanda", "agentpass1", models.UserRoleAgent)
	manager := createUserFixture(t, database, "gmwale", "managerpass", models.UserRoleManager)

	gated := middleware.RequireRole(models.UserRoleAdmin)(GetUsersHandler)

	for _, user := range []*models.User{agent, manager} {
		_, c, _ := setupEcho(http.MethodGet, "/api/users", nil)
		actAs(c, user)

		err := gated(c)
		require.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	}
}

func TestCreateUserHandler(t *testing.T) {
	database := setupTestDB(t)
	admin := createUserFixture(t, database, "admin", "adminpass1", models.UserRoleAdmin)

	t.Run("Valid creation", func(t *testing.T) {
		body := `{"username": "newagent", "password": "agentpass1", "confirm_password": "agentpass1", "role": "Agent", "region": "Lusaka"}`
		_, c, rec := setupEcho(http.MethodPost, "/api/users", strings.NewReader(body))
		actAs(c, admin)

		err := CreateUserHandler(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		stored, err := services.GetUser(database, "newagent")
		require.NoError(t, err)
		assert.Equal(t, models.UserRoleAgent, stored.Role)
		assert.Equal(t, "Lusaka", stored.Region)
		assert.True(t, stored.Active)
		// Stored as a hash, never plaintext
		assert.NotEqual(t, "agentpass1", stored.Password)
		assert.True(t, services.VerifyPassword(stored.Password, "agentpass1"))
	})

	t.Run("Duplicate username", func(t *testing.T) {
		body := `{"username": "newagent", "password": "other", "role": "Agent"}`
		_, c, rec := setupEcho(http.MethodPost, "/api/users", strings.NewReader(body))
		actAs(c, admin)

		err := CreateUserHandler(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Password confirmation mismatch", func(t *testing.T) {
		body := `{"username": "mismatch", "password": "one", "confirm_password": "two"}`
		_, c, rec := setupEcho(http.MethodPost, "/api/users", strings.NewReader(body))
		actAs(c, admin)

		err := CreateUserHandler(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		_, err = services.GetUser(database, "mismatch")
		assert.ErrorIs(t, err, services.ErrUserNotFound)
	})

	t.Run("Invalid role", func(t *testing.T) {
		body := `{"username": "weirdrole", "password": "pass", "role": "Owner"}`
		_, c, rec := setupEcho(http.MethodPost, "/api/users", strings.NewReader(body))
		actAs(c, admin)

		err := CreateUserHandler(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateUserHandler(t *testing.T) {
	database := setupTestDB(t)
	admin := createUserFixture(t, database, "admin", "adminpass1", models.UserRoleAdmin)
	createUserFixture(t, database, "jbanda", "agentpass1", models.UserRoleAgent)

	t.Run("Deactivate and promote", func(t *testing.T) {
		body := `{"role": "Manager", "region": "Eastern", "active": false}`
		_, c, rec := setupEcho(http.MethodPut, "/api/users/jbanda", strings.NewReader(body))
		c.SetParamNames("username")
		c.SetParamValues("jbanda")
		actAs(c, admin)

		err := UpdateUserHandler(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		stored, err := services.GetUser(database, "jbanda")
		require.NoError(t, err)
		assert.Equal(t, models.UserRoleManager, stored.Role)
		assert.Equal(t, "Eastern", stored.Region)
		assert.False(t, stored.Active)
	})

	t.Run("Password change requires matching confirmation", func(t *testing.T) {
		body := `{"password": "newpass99", "confirm_password": "different"}`
		_, c, rec := setupEcho(http.MethodPut, "/api/users/jbanda", strings.NewReader(body))
		c.SetParamNames("username")
		c.SetParamValues("jbanda")
		actAs(c, admin)

		err := UpdateUserHandler(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Missing user", func(t *testing.T) {
		body := `{"role": "Agent"}`
		_, c, rec := setupEcho(http.MethodPut, "/api/users/ghost", strings.NewReader(body))
		c.SetParamNames("username")
		c.SetParamValues("ghost")
		actAs(c, admin)

		err := UpdateUserHandler(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteUserHandler(t *testing.T) {
	database := setupTestDB(t)
	admin := createUserFixture(t, database, "admin", "adminpass1", models.UserRoleAdmin)
	createUserFixture(t, database, "jbanda", "agentpass1", models.UserRoleAgent)

	deleteUser := func(target string) *httptest.ResponseRecorder {
		_, c, rec := setupEcho(http.MethodDelete, "/api/users/"+target, nil)
		c.SetParamNames("username")
		c.SetParamValues(target)
		actAs(c, admin)

		err := DeleteUserHandler(c)
		require.NoError(t, err)
		return rec
	}

	t.Run("Delete and repeat", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, deleteUser("jbanda").Code)

		_, err := services.GetUser(database, "jbanda")
		assert.ErrorIs(t, err, services.ErrUserNotFound)

		// Second delete of a missing user is a no-op success
		assert.Equal(t, http.StatusNoContent, deleteUser("jbanda").Code)
	})

	t.Run("Cannot delete own account", func(t *testing.T) {
		rec := deleteUser("admin")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		_, err := services.GetUser(database, "admin")
		assert.NoError(t, err)
	})
}
