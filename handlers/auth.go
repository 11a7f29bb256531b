package handlers

import (
	"errors"
	"net/http"
	"strings"

	"vitalite_portal_go/config"
	"vitalite_portal_go/db"
	"vitalite_portal_go/middleware"
	"vitalite_portal_go/services"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginHandler handles the login submission and starts a session
func LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Please enter both username and password",
		})
	}

	user, err := services.Authenticate(db.DB, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "Invalid credentials or inactive account",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Login failed",
		})
	}

	session, err := services.CreateSession(db.DB, user.Username, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create session",
		})
	}

	var isProduction bool
	if cfg, ok := c.Get("config").(*config.Config); ok {
		isProduction = cfg.Environment == "production"
	}

	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(services.DefaultSessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	}
	c.SetCookie(cookie)

	services.LogSecurityEvent("LOGIN", user.Username, "User logged in")

	return c.JSON(http.StatusOK, user)
}

// LogoutHandler ends the current session
func LogoutHandler(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		services.DeleteSession(db.DB, cookie.Value)
	}

	middleware.ClearSessionCookie(c)

	if user := middleware.GetCurrentUser(c); user != nil {
		services.LogSecurityEvent("LOGOUT", user.Username, "User logged out")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetCurrentUserHandler returns the authenticated user
func GetCurrentUserHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}
