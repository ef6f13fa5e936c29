package db

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/go-retail/internal/models"
)

// Seed inserts baseline staff accounts, categories and a few products.
// Running it twice leaves the data unchanged.
func Seed(db *gorm.DB) error {
	users := []models.User{
		{Username: "admin", Name: "Administrateur", Role: models.RoleAdmin, IsActive: true},
		{Username: "manager", Name: "Responsable magasin", Role: models.RoleManager, IsActive: true},
		{Username: "vendeur", Name: "Vendeur", Role: models.RoleSeller, IsActive: true},
	}
	for _, u := range users {
		if err := db.Where("username = ?", u.Username).FirstOrCreate(&u).Error; err != nil {
			return errors.Wrapf(err, "seed user %s", u.Username)
		}
	}

	categories := map[string]string{
		"Vélos":       "Vélos de ville, route et VTT",
		"Accessoires": "Casques, antivols, éclairage",
		"Pièces":      "Pièces détachées",
		"Atelier":     "Prestations d'entretien",
	}
	catIDs := make(map[string]uint, len(categories))
	for name, desc := range categories {
		c := models.Category{Name: name, Description: desc}
		if err := db.Where("name = ?", name).FirstOrCreate(&c).Error; err != nil {
			return errors.Wrapf(err, "seed category %s", name)
		}
		catIDs[name] = c.ID
	}

	products := []struct {
		p        models.Product
		category string
	}{
		{models.Product{Reference: "VEL-001", Name: "Vélo de ville 28\"", Type: models.ProductTypeBike, Brand: "Peugeot", Size: "M",
			PriceExclTax: dec("500.00"), PriceInclTax: dec("600.00"), TaxRate: dec("20"), StockVilleAvray: 4, StockGarches: 2}, "Vélos"},
		{models.Product{Reference: "ACC-001", Name: "Casque urbain", Type: models.ProductTypeAccessory, Brand: "Abus",
			PriceExclTax: dec("41.67"), PriceInclTax: dec("50.00"), TaxRate: dec("20"), StockVilleAvray: 12, StockGarches: 8}, "Accessoires"},
		{models.Product{Reference: "PIE-001", Name: "Chambre à air 700x25", Type: models.ProductTypePart, Brand: "Michelin",
			PriceExclTax: dec("6.67"), PriceInclTax: dec("8.00"), TaxRate: dec("20"), StockVilleAvray: 30, StockGarches: 25}, "Pièces"},
		{models.Product{Reference: "ATE-001", Name: "Révision complète", Type: models.ProductTypeService,
			PriceExclTax: dec("50.00"), PriceInclTax: dec("60.00"), TaxRate: dec("20")}, "Atelier"},
	}
	for _, sp := range products {
		p := sp.p
		p.AlertStock = 5
		p.IsActive = true
		p.IsVisible = true
		if id, ok := catIDs[sp.category]; ok {
			p.CategoryID = &id
		}
		if err := db.Where("reference = ?", p.Reference).FirstOrCreate(&p).Error; err != nil {
			return errors.Wrapf(err, "seed product %s", p.Reference)
		}
	}
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
