package main

import (
	"log"
	"time"

	"vitalite_portal_go/config"
	"vitalite_portal_go/db"
	"vitalite_portal_go/handlers"
	"vitalite_portal_go/middleware"
	"vitalite_portal_go/models"
	"vitalite_portal_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(&models.CaseRecord{}, &models.User{}, &models.Session{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed the default admin account
	if err := services.SeedAdminUser(db.DB, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Public routes
	e.GET("/healthz", handlers.HealthzHandler)
	e.POST("/login", handlers.LoginHandler)

	// Protected routes (any authenticated role)
	protected := e.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.POST("/logout", handlers.LogoutHandler)
		protected.GET("/api/me", handlers.GetCurrentUserHandler)

		// Case intake and lifecycle
		protected.GET("/api/cases", handlers.GetCasesHandler)
		protected.POST("/api/cases", handlers.CreateCaseHandler)
		protected.GET("/api/cases/:id", handlers.GetCaseHandler)
		protected.POST("/api/cases/:id/resolve", handlers.ResolveCaseHandler)
		protected.DELETE("/api/cases/:id", handlers.DeleteCaseHandler)
		protected.POST("/api/cases/attachments", handlers.UploadAttachmentsHandler)

		// Dashboard and exports
		protected.GET("/api/dashboard", handlers.DashboardHandler)
		protected.GET("/api/reports/cases.csv", handlers.ExportCasesCSVHandler)
		protected.GET("/api/reports/cases.xlsx", handlers.ExportCasesXLSXHandler)
		protected.GET("/api/reports/kpi.txt", handlers.KPIReportHandler)

		// Admin-only user management
		adminRoutes := protected.Group("/api/users")
		adminRoutes.Use(middleware.RequireRole(models.UserRoleAdmin))
		{
			adminRoutes.GET("", handlers.GetUsersHandler)
			adminRoutes.POST("", handlers.CreateUserHandler)
			adminRoutes.PUT("/:username", handlers.UpdateUserHandler)
			adminRoutes.DELETE("/:username", handlers.DeleteUserHandler)
		}
	}

	// Uploaded attachments
	e.Static("/static", cfg.UploadDir)

	// Hourly cleanup of expired sessions
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
