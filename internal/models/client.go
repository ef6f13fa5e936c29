package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Client is a customer of the shops.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null;index" json:"last_name"`
	// FullName is denormalized for listings and reports; kept in sync on save.
	FullName string `gorm:"size:201;not null" json:"full_name"`

	Email string `gorm:"size:255;index" json:"email,omitempty"`
	Phone string `gorm:"size:30" json:"phone,omitempty"`

	Address    string `gorm:"size:500" json:"address,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`

	IsActive bool `gorm:"not null" json:"is_active"`
}

// BeforeSave keeps FullName consistent with the name parts.
func (c *Client) BeforeSave(tx *gorm.DB) error {
	c.FullName = c.DisplayName()
	return nil
}

// DisplayName joins first and last name.
func (c *Client) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}
