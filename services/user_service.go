package services

import (
	"errors"
	"fmt"

	"vitalite_portal_go/models"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when a username has no account
var ErrUserNotFound = errors.New("user not found")

// SaveUser inserts or replaces an account keyed by username.
// The Password field must already be hashed by the caller.
func SaveUser(db *gorm.DB, user *models.User) error {
	return withWriteRetry(func() error {
		var existing models.User
		err := db.First(&existing, "username = ?", user.Username).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(user).Error; err != nil {
				return fmt.Errorf("failed to create user %s: %w", user.Username, err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up user %s: %w", user.Username, err)
		}

		// Full overwrite, including zero values such as Active=false
		err = db.Model(&models.User{}).
			Where("username = ?", user.Username).
			Updates(map[string]interface{}{
				"password": user.Password,
				"role":     user.Role,
				"region":   user.Region,
				"active":   user.Active,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update user %s: %w", user.Username, err)
		}
		return nil
	})
}

// GetUser fetches a single account by username
func GetUser(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", username, err)
	}
	return &user, nil
}

// GetAllUsers returns every stored account
func GetAllUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	if err := db.Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

// DeleteUser physically removes the account and its sessions. Deleting a
// missing user is a no-op.
func DeleteUser(db *gorm.DB, username string) error {
	if err := DeleteAllUserSessions(db, username); err != nil {
		return err
	}
	return withWriteRetry(func() error {
		result := db.Where("username = ?", username).Delete(&models.User{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete user %s: %w", username, result.Error)
		}
		return nil
	})
}
