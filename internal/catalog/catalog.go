// Package catalog manages products, categories and per-store stock counters.
package catalog

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/go-retail/internal/models"
	"github.com/diewo77/go-retail/validation"
)

var (
	ErrProductNotFound   = errors.New("product_not_found")
	ErrCategoryNotFound  = errors.New("category_not_found")
	ErrProductInUse      = errors.New("product_in_use")
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrInvalidStore      = errors.New("invalid_store")
)

const defaultPageSize = 50

var hundred = decimal.NewFromInt(100)

// ProductInput carries the writable product fields.
type ProductInput struct {
	Reference       string
	Name            string
	Description     string
	Type            models.ProductType
	Brand           string
	Size            string
	Barcode         string
	CategoryID      *uint
	PriceExclTax    decimal.Decimal
	PriceInclTax    decimal.Decimal
	TaxRate         decimal.Decimal
	StockVilleAvray int
	StockGarches    int
	AlertStock      int
	IsActive        bool
	IsVisible       bool
}

// Validate reports field violations.
func (in ProductInput) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("reference", in.Reference, v)
	validation.Required("name", in.Name, v)
	if !in.Type.Valid() {
		v["product_type"] = "invalid_choice"
	}
	validation.NonNegativeDecimal("price_excl_tax", in.PriceExclTax, v)
	validation.NonNegativeDecimal("price_incl_tax", in.PriceInclTax, v)
	validation.RangeDecimal("tax_rate", in.TaxRate, decimal.Zero, hundred, v)
	for field, val := range map[string]decimal.Decimal{
		"price_excl_tax": in.PriceExclTax,
		"price_incl_tax": in.PriceInclTax,
		"tax_rate":       in.TaxRate,
	} {
		validation.MaxScale(field, val, 2, v)
	}
	if in.StockVilleAvray < 0 {
		v["stock_ville_avray"] = "must_not_be_negative"
	}
	if in.StockGarches < 0 {
		v["stock_garches"] = "must_not_be_negative"
	}
	if in.AlertStock < 0 {
		v["alert_stock"] = "must_not_be_negative"
	}
	return v
}

// InclTax derives the incl.-tax price from the excl.-tax price when only the latter is given.
func (in ProductInput) InclTax() decimal.Decimal {
	if !in.PriceInclTax.IsZero() {
		return in.PriceInclTax
	}
	return in.PriceExclTax.Mul(hundred.Add(in.TaxRate)).Div(hundred).Round(2)
}

func (in ProductInput) apply(p *models.Product) {
	p.Reference = strings.TrimSpace(in.Reference)
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Type = in.Type
	p.Brand = in.Brand
	p.Size = in.Size
	p.Barcode = nil
	if bc := strings.TrimSpace(in.Barcode); bc != "" {
		p.Barcode = &bc
	}
	p.CategoryID = in.CategoryID
	p.PriceExclTax = in.PriceExclTax
	p.PriceInclTax = in.InclTax()
	p.TaxRate = in.TaxRate
	p.StockVilleAvray = in.StockVilleAvray
	p.StockGarches = in.StockGarches
	p.AlertStock = in.AlertStock
	p.IsActive = in.IsActive
	p.IsVisible = in.IsVisible
}

// Page selects a slice of a listing.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) limit() int {
	if p.Limit <= 0 || p.Limit > 500 {
		return defaultPageSize
	}
	return p.Limit
}

// Service is the catalog store.
type Service struct {
	db                 *gorm.DB
	allowNegativeStock bool
}

// NewService returns a catalog backed by db. When allowNegativeStock is false,
// sales that would take a store counter below zero fail with ErrInsufficientStock.
func NewService(db *gorm.DB, allowNegativeStock bool) *Service {
	return &Service{db: db, allowNegativeStock: allowNegativeStock}
}

func (s *Service) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if v := in.Validate(); !v.Empty() {
		return nil, v
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	var p models.Product
	in.apply(&p)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&p).Error; err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return &p, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Product, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Service) GetByReference(ctx context.Context, ref string) (*models.Product, error) {
	return s.first(ctx, "reference = ?", strings.TrimSpace(ref))
}

func (s *Service) GetByBarcode(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrProductNotFound
	}
	return s.first(ctx, "barcode = ?", code)
}

func (s *Service) first(ctx context.Context, query string, arg any) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Preload("Category").Where(query, arg).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products, newest first.
func (s *Service) List(ctx context.Context, page Page) ([]models.Product, error) {
	var out []models.Product
	err := s.db.WithContext(ctx).Preload("Category").
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset).Limit(page.limit()).
		Find(&out).Error
	return out, err
}

func (s *Service) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if v := in.Validate(); !v.Empty() {
		return nil, v
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	p.Category = nil
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error; err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	return s.Get(ctx, id)
}

// Delete removes a product. Products referenced by an order item are kept.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.Select("id").First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrProductInUse
		}
		return tx.Delete(&models.Product{}, id).Error
	})
}

// AdjustStock applies a manual correction to one store counter and records the movement.
func (s *Service) AdjustStock(ctx context.Context, productID uint, store models.Store, delta int, note string) (*models.Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.applyStockDelta(tx, productID, store, delta, models.MovementAdjustment, nil, note)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, productID)
}

// DecrementStock takes qty units out of a store counter inside the caller's transaction
// and returns the counter value after the sale.
func (s *Service) DecrementStock(tx *gorm.DB, productID uint, store models.Store, qty int, orderID uint) (int, error) {
	return s.applyStockDelta(tx, productID, store, -qty, models.MovementSale, &orderID, "")
}

// applyStockDelta changes the counter with one UPDATE col = col + delta and reads the
// new value back inside the same transaction.
func (s *Service) applyStockDelta(tx *gorm.DB, productID uint, store models.Store, delta int, reason models.MovementReason, orderID *uint, note string) (int, error) {
	col := store.StockColumn()
	if col == "" {
		return 0, ErrInvalidStore
	}
	res := tx.Model(&models.Product{}).Where("id = ?", productID).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta))
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "update stock")
	}
	if res.RowsAffected == 0 {
		return 0, ErrProductNotFound
	}

	var after int
	if err := tx.Model(&models.Product{}).Where("id = ?", productID).Select(col).Scan(&after).Error; err != nil {
		return 0, errors.Wrap(err, "read stock")
	}
	if after < 0 && delta < 0 && (!s.allowNegativeStock || reason == models.MovementAdjustment) {
		return after, errors.Wrapf(ErrInsufficientStock, "product %d at %s would drop to %d", productID, store, after)
	}

	mv := models.StockMovement{
		ProductID:  productID,
		Store:      store,
		Delta:      delta,
		StockAfter: after,
		Reason:     reason,
		OrderID:    orderID,
		Note:       note,
	}
	if err := tx.Omit(clause.Associations).Create(&mv).Error; err != nil {
		return 0, errors.Wrap(err, "record stock movement")
	}
	return after, nil
}

// Movements lists the stock history of a product, newest first.
func (s *Service) Movements(ctx context.Context, productID uint, page Page) ([]models.StockMovement, error) {
	var out []models.StockMovement
	err := s.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("id DESC").Offset(page.Offset).Limit(page.limit()).
		Find(&out).Error
	return out, err
}

func (s *Service) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	v := validation.Violations{}
	validation.Required("name", name, v)
	if !v.Empty() {
		return nil, v
	}
	c := models.Category{Name: strings.TrimSpace(name), Description: description}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, errors.Wrap(err, "create category")
	}
	return &c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := s.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

func (s *Service) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
