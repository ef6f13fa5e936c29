// Package models holds the persisted retail entities and their gorm mappings.
package models

// All returns every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&Client{},
		&Order{},
		&OrderItem{},
		&Invoice{},
		&StockMovement{},
	}
}
