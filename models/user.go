package models

import (
	"time"
)

// Account role constants
const (
	UserRoleAdmin   = "Admin"
	UserRoleManager = "Manager"
	UserRoleAgent   = "Agent"
)

// UserRoles lists the assignable account roles, in form order
var UserRoles = []string{UserRoleAdmin, UserRoleManager, UserRoleAgent}

// RegionAll marks an account that is not scoped to a single region
const RegionAll = "All"

type User struct {
	Username  string    `gorm:"primarykey" json:"username"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	Role      string    `gorm:"not null;default:Agent" json:"role"`
	Region    string    `gorm:"not null;default:All" json:"region"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// IsAdmin checks if the user can manage accounts
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// IsValidUserRole checks account role enum membership
func IsValidUserRole(role string) bool {
	for _, r := range UserRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsValidUserRegion checks that the region is a known region or "All"
func IsValidUserRegion(region string) bool {
	return region == RegionAll || IsValidRegion(region)
}
