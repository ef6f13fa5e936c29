package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType classifies catalog entries.
type ProductType string

const (
	ProductTypeBike      ProductType = "bike"
	ProductTypeAccessory ProductType = "accessory"
	ProductTypePart      ProductType = "part"
	ProductTypeService   ProductType = "service"
)

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeBike, ProductTypeAccessory, ProductTypePart, ProductTypeService:
		return true
	}
	return false
}

// DefaultAlertStock is the total stock at or below which a product is reported as low.
const DefaultAlertStock = 5

// Category groups products.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
}

// Product is a catalog entry with one stock counter per store.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reference   string      `gorm:"size:50;uniqueIndex;not null" json:"reference"`
	Name        string      `gorm:"size:200;not null;index" json:"name"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	Type        ProductType `gorm:"column:product_type;size:20;not null" json:"product_type"`
	Brand       string      `gorm:"size:100" json:"brand,omitempty"`
	Size        string      `gorm:"size:50" json:"size,omitempty"`
	Barcode     *string     `gorm:"size:100;uniqueIndex" json:"barcode,omitempty"`

	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`

	// TaxRate is a percentage: 20 means 20 %.
	PriceExclTax decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_excl_tax"`
	PriceInclTax decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_incl_tax"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"`

	StockVilleAvray int `gorm:"not null;default:0" json:"stock_ville_avray"`
	StockGarches    int `gorm:"not null;default:0" json:"stock_garches"`
	AlertStock      int `gorm:"not null;default:5" json:"alert_stock"`

	IsActive  bool `gorm:"not null" json:"is_active"`
	IsVisible bool `gorm:"not null" json:"is_visible"`
}

// StockAt returns the stock counter for the given store.
func (p *Product) StockAt(s Store) int {
	switch s {
	case StoreVilleAvray:
		return p.StockVilleAvray
	case StoreGarches:
		return p.StockGarches
	}
	return 0
}

// TotalStock sums the stock across all stores.
func (p *Product) TotalStock() int {
	return p.StockVilleAvray + p.StockGarches
}

// IsLowStock reports whether the total stock is at or below the alert level.
func (p *Product) IsLowStock() bool {
	return p.TotalStock() <= p.AlertStock
}
