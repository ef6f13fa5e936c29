package models

import "time"

// MovementReason tells why a stock counter changed.
type MovementReason string

const (
	MovementSale       MovementReason = "sale"
	MovementAdjustment MovementReason = "adjustment"
)

// StockMovement records one change of a product's stock in a store.
type StockMovement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	ProductID  uint           `gorm:"index;not null" json:"product_id"`
	Product    *Product       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Store      Store          `gorm:"size:20;not null" json:"store"`
	Delta      int            `gorm:"not null" json:"delta"`
	StockAfter int            `gorm:"not null" json:"stock_after"`
	Reason     MovementReason `gorm:"size:20;not null" json:"reason"`
	OrderID    *uint          `gorm:"index" json:"order_id,omitempty"`
	Note       string         `gorm:"size:255" json:"note,omitempty"`
}
