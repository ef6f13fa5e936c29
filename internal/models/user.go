package models

import (
	"time"
)

// Role is the job of a staff member; permissions are derived from it.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSeller  Role = "vendeur"
)

// User is a staff member acting on orders. Authentication itself lives outside this service.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	Name      string    `gorm:"size:255" json:"name,omitempty"`
	Role      Role      `gorm:"size:20;not null" json:"role"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
}
