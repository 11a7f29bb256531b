package handlers

import (
	"errors"
	"net/http"
	"strings"

	"vitalite_portal_go/config"
	"vitalite_portal_go/db"
	"vitalite_portal_go/middleware"
	"vitalite_portal_go/models"
	"vitalite_portal_go/services"

	"github.com/labstack/echo/v4"
)

// GetUsersHandler returns the full user list (admin only, enforced by route
// middleware)
func GetUsersHandler(c echo.Context) error {
	users, err := services.GetAllUsers(db.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch users",
		})
	}
	return c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	Username        string `json:"username" form:"username"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	Role            string `json:"role" form:"role"`
	Region          string `json:"region" form:"region"`
	Email           string `json:"email" form:"email"`
}

// CreateUserHandler creates a new account (admin only)
func CreateUserHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Please fill all fields",
		})
	}
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Passwords don't match",
		})
	}
	if req.Role == "" {
		req.Role = models.UserRoleAgent
	}
	if !models.IsValidUserRole(req.Role) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid role. Must be one of: Admin, Manager, Agent",
		})
	}
	if req.Region == "" {
		req.Region = models.RegionAll
	}
	if !models.IsValidUserRegion(req.Region) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid region",
		})
	}

	if _, err := services.GetUser(db.DB, req.Username); err == nil {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "Username already exists",
		})
	} else if !errors.Is(err, services.ErrUserNotFound) {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create user",
		})
	}

	hashedPassword, err := services.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to hash password",
		})
	}

	user := &models.User{
		Username: req.Username,
		Password: hashedPassword,
		Role:     req.Role,
		Region:   req.Region,
		Active:   true,
	}

	if err := services.SaveUser(db.DB, user); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create user",
		})
	}

	services.LogSecurityEvent("USER_CREATED", currentUser.Username, "Created user: "+user.Username)

	// Welcome email is best effort and never blocks the response
	if req.Email != "" {
		if cfg, ok := c.Get("config").(*config.Config); ok {
			services.SendEmailAsync(cfg, services.BuildWelcomeEmail(req.Email, user.Username))
		}
	}

	return c.JSON(http.StatusCreated, user)
}

type updateUserRequest struct {
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	Role            string `json:"role" form:"role"`
	Region          string `json:"region" form:"region"`
	Active          *bool  `json:"active" form:"active"`
}

// UpdateUserHandler edits an existing account (admin only)
func UpdateUserHandler(c echo.Context) error {
	username := c.Param("username")
	currentUser := middleware.GetCurrentUser(c)

	user, err := services.GetUser(db.DB, username)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "User not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch user",
		})
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if req.Password != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Passwords don't match",
		})
	}
	if req.Role != "" {
		if !models.IsValidUserRole(req.Role) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid role. Must be one of: Admin, Manager, Agent",
			})
		}
		user.Role = req.Role
	}
	if req.Region != "" {
		if !models.IsValidUserRegion(req.Region) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid region",
			})
		}
		user.Region = req.Region
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Password != "" {
		hashedPassword, err := services.HashPassword(req.Password)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to hash password",
			})
		}
		user.Password = hashedPassword
	}

	if err := services.SaveUser(db.DB, user); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update user",
		})
	}

	// Deactivation takes effect immediately
	if req.Active != nil && !*req.Active {
		services.DeleteAllUserSessions(db.DB, user.Username)
	}

	services.LogSecurityEvent("USER_MODIFIED", currentUser.Username, "Modified user: "+user.Username)

	return c.JSON(http.StatusOK, user)
}

// DeleteUserHandler removes an account (admin only). Deleting a missing
// account succeeds.
func DeleteUserHandler(c echo.Context) error {
	username := c.Param("username")
	currentUser := middleware.GetCurrentUser(c)

	if username == currentUser.Username {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Cannot delete your own account",
		})
	}

	if err := services.DeleteUser(db.DB, username); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete user",
		})
	}

	services.LogSecurityEvent("USER_DELETED", currentUser.Username, "Deleted user: "+username)

	return c.NoContent(http.StatusNoContent)
}
