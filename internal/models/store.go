package models

// Store is one of the physical shops. Each store has its own stock counter per product.
type Store string

const (
	StoreVilleAvray Store = "ville_avray"
	StoreGarches    Store = "garches"
)

// Stores returns the known store codes.
func Stores() []Store {
	return []Store{StoreVilleAvray, StoreGarches}
}

// Valid reports whether s is a known store code.
func (s Store) Valid() bool {
	return s == StoreVilleAvray || s == StoreGarches
}

// DisplayName returns the human-readable store name.
func (s Store) DisplayName() string {
	switch s {
	case StoreVilleAvray:
		return "Ville d'Avray"
	case StoreGarches:
		return "Garches"
	}
	return string(s)
}

// StockColumn returns the products column holding the stock for this store.
func (s Store) StockColumn() string {
	switch s {
	case StoreVilleAvray:
		return "stock_ville_avray"
	case StoreGarches:
		return "stock_garches"
	}
	return ""
}
