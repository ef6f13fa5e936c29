package db

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/go-retail/internal/models"
)

func TestSeedIdempotent(t *testing.T) {
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_foreign_keys=1"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := AutoMigrate(d); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d); err != nil {
		t.Fatal(err)
	}

	var users, products, categories int64
	d.Model(&models.User{}).Count(&users)
	d.Model(&models.Product{}).Count(&products)
	d.Model(&models.Category{}).Count(&categories)
	if users != 3 {
		t.Fatalf("expected 3 users got %d", users)
	}
	if products != 4 {
		t.Fatalf("expected 4 products got %d", products)
	}
	if categories != 4 {
		t.Fatalf("expected 4 categories got %d", categories)
	}

	var bike models.Product
	if err := d.Where("reference = ?", "VEL-001").First(&bike).Error; err != nil {
		t.Fatal(err)
	}
	if bike.CategoryID == nil || !bike.IsActive || bike.StockVilleAvray != 4 {
		t.Fatalf("unexpected seeded bike: %+v", bike)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected up and down migration, got %d files", len(entries))
	}
}
