package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"vitalite_portal_go/config"
	"vitalite_portal_go/db"
	"vitalite_portal_go/models"
	"vitalite_portal_go/services"

	"golang.org/x/term"
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
	if err := db.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")
	fmt.Println()

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Printf("Role (%s): ", strings.Join(models.UserRoles, ", "))
	role, _ := reader.ReadString('\n')
	role = strings.TrimSpace(role)
	if role == "" {
		role = models.UserRoleAgent
	}

	fmt.Printf("Region (All or one of: %s): ", strings.Join(models.Regions, ", "))
	region, _ := reader.ReadString('\n')
	region = strings.TrimSpace(region)
	if region == "" {
		region = models.RegionAll
	}

	// Get password securely
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	password := string(passwordBytes)
	fmt.Println() // New line after password input

	// Validate inputs
	if username == "" || password == "" {
		log.Fatal("Username and password are required")
	}
	if len(password) < 8 {
		log.Fatal("Password must be at least 8 characters long")
	}
	if !models.IsValidUserRole(role) {
		log.Fatalf("Invalid role %q. Must be one of: %s", role, strings.Join(models.UserRoles, ", "))
	}
	if !models.IsValidUserRegion(region) {
		log.Fatalf("Invalid region %q", region)
	}

	// Check if user already exists
	if _, err := services.GetUser(db.DB, username); err == nil {
		log.Fatalf("User %s already exists", username)
	}

	// Hash password
	hashedPassword, err := services.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Password: hashedPassword,
		Role:     role,
		Region:   region,
		Active:   true,
	}

	if err := services.SaveUser(db.DB, user); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User %s created with role %s (region %s)\n", username, role, region)
}
