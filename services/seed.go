package services

import (
	"errors"
	"log"

	"vitalite_portal_go/models"

	"gorm.io/gorm"
)

// SeedAdminUser creates the default Admin account if no account with that
// username exists yet. Safe to run on every startup.
func SeedAdminUser(db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.First(&existing, "username = ?", username).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}

	user := &models.User{
		Username: username,
		Password: hashedPassword,
		Role:     models.UserRoleAdmin,
		Region:   models.RegionAll,
		Active:   true,
	}

	if err := db.Create(user).Error; err != nil {
		return err
	}

	log.Printf("[SEED] Created admin user: %s", username)
	return nil
}
