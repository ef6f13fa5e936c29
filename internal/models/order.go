package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/go-retail/internal/numbering"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentMethod is how the client settles an order.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentCheck    PaymentMethod = "check"
	PaymentTransfer PaymentMethod = "transfer"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentCheck, PaymentTransfer:
		return true
	}
	return false
}

// Order is a sale made in one store. Its items are owned and removed with it.
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// OrderNumber is assigned once on insert and never updated.
	OrderNumber string `gorm:"size:40;uniqueIndex;not null;<-:create" json:"order_number"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"constraint:OnDelete:RESTRICT" json:"client,omitempty"`
	UserID   uint    `gorm:"index;not null" json:"user_id"`
	User     *User   `gorm:"constraint:OnDelete:RESTRICT" json:"-"`

	Store         Store         `gorm:"size:20;not null;index" json:"store"`
	PaymentMethod PaymentMethod `gorm:"size:20;not null" json:"payment_method"`
	Installments  int           `gorm:"not null" json:"installments"`
	Status        OrderStatus   `gorm:"size:20;not null;index" json:"status"`

	SubtotalExclTax decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal_excl_tax"`
	TotalTax        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_tax"`
	TotalInclTax    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_incl_tax"`

	// Discount fields are informational; they are printed but never subtracted from totals.
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_percentage"`

	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Items   []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Invoice *Invoice    `gorm:"constraint:OnDelete:RESTRICT" json:"invoice,omitempty"`
}

// BeforeCreate assigns the order number.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderNumber == "" {
		o.OrderNumber = numbering.Next(numbering.OrderPrefix)
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

// ItemsSubtotalExclTax sums the excl.-tax subtotals of the loaded items.
func (o *Order) ItemsSubtotalExclTax() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.SubtotalExclTax)
	}
	return total
}

// ItemsSubtotalInclTax sums the incl.-tax subtotals of the loaded items.
func (o *Order) ItemsSubtotalInclTax() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.SubtotalInclTax)
	}
	return total
}

// OrderItem is one line of an order. Items are written once, at order placement.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OrderID  uint `gorm:"index;not null" json:"order_id"`
	Position int  `gorm:"not null" json:"position"`

	ProductID uint     `gorm:"index;not null" json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`

	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitPriceExclTax decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price_excl_tax"`
	UnitPriceInclTax decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price_incl_tax"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	SubtotalExclTax  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal_excl_tax"`
	SubtotalInclTax  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal_incl_tax"`
}

// ComputeSubtotals sets both subtotals to unit price times quantity.
func (it *OrderItem) ComputeSubtotals() {
	qty := decimal.NewFromInt(int64(it.Quantity))
	it.SubtotalExclTax = it.UnitPriceExclTax.Mul(qty)
	it.SubtotalInclTax = it.UnitPriceInclTax.Mul(qty)
}

// BeforeCreate computes subtotals so they always match price times quantity.
func (it *OrderItem) BeforeCreate(tx *gorm.DB) error {
	it.ComputeSubtotals()
	return nil
}
