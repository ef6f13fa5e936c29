// Package orders places orders: one transaction writes the order, its items, the
// stock decrements and the invoice record.
package orders

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/go-retail/internal/catalog"
	"github.com/diewo77/go-retail/internal/clients"
	"github.com/diewo77/go-retail/internal/events"
	"github.com/diewo77/go-retail/internal/models"
	"github.com/diewo77/go-retail/validation"
)

var (
	ErrNoItems       = errors.New("order has no items")
	ErrUserNotFound  = errors.New("user_not_found")
	ErrOrderNotFound = errors.New("order_not_found")
	ErrOrderInvoiced = errors.New("order_invoiced")
)

var tracer = otel.Tracer("github.com/diewo77/go-retail/internal/orders")

var hundred = decimal.NewFromInt(100)

// moneyScale matches the decimal(12,2) and decimal(5,2) columns.
const moneyScale = 2

// PlacementError is returned for every failed placement. Nothing was written.
type PlacementError struct {
	Cause error
}

func (e *PlacementError) Error() string { return "order placement failed: " + e.Cause.Error() }

func (e *PlacementError) Unwrap() error { return e.Cause }

// ItemInput is one requested line. Nil prices or rate are taken from the catalog.
type ItemInput struct {
	ProductID        uint
	Quantity         int
	UnitPriceExclTax *decimal.Decimal
	UnitPriceInclTax *decimal.Decimal
	TaxRate          *decimal.Decimal
}

// PlaceOrderInput describes a sale. UserID is the acting staff member.
type PlaceOrderInput struct {
	ClientID           uint
	UserID             uint
	Store              models.Store
	PaymentMethod      models.PaymentMethod
	Installments       int
	DiscountAmount     decimal.Decimal
	DiscountPercentage decimal.Decimal
	Notes              string
	Items              []ItemInput
}

// Validate normalizes defaults and reports violations.
func (in *PlaceOrderInput) Validate() error {
	if len(in.Items) == 0 {
		return ErrNoItems
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCash
	}
	if in.Installments == 0 {
		in.Installments = 1
	}

	v := validation.Violations{}
	validation.RequiredID("client_id", in.ClientID, v)
	validation.RequiredID("user_id", in.UserID, v)
	if !in.Store.Valid() {
		v["store"] = "invalid_choice"
	}
	if !in.PaymentMethod.Valid() {
		v["payment_method"] = "invalid_choice"
	}
	validation.PositiveInt("installments", in.Installments, v)
	validation.NonNegativeDecimal("discount_amount", in.DiscountAmount, v)
	validation.MaxScale("discount_amount", in.DiscountAmount, moneyScale, v)
	validation.RangeDecimal("discount_percentage", in.DiscountPercentage, decimal.Zero, hundred, v)
	validation.MaxScale("discount_percentage", in.DiscountPercentage, moneyScale, v)
	for i, it := range in.Items {
		prefix := "items[" + strconv.Itoa(i) + "]."
		validation.RequiredID(prefix+"product_id", it.ProductID, v)
		validation.PositiveInt(prefix+"quantity", it.Quantity, v)
		if it.UnitPriceExclTax != nil {
			validation.NonNegativeDecimal(prefix+"unit_price_excl_tax", *it.UnitPriceExclTax, v)
			validation.MaxScale(prefix+"unit_price_excl_tax", *it.UnitPriceExclTax, moneyScale, v)
		}
		if it.UnitPriceInclTax != nil {
			validation.NonNegativeDecimal(prefix+"unit_price_incl_tax", *it.UnitPriceInclTax, v)
			validation.MaxScale(prefix+"unit_price_incl_tax", *it.UnitPriceInclTax, moneyScale, v)
		}
		if it.TaxRate != nil {
			validation.RangeDecimal(prefix+"tax_rate", *it.TaxRate, decimal.Zero, hundred, v)
			validation.MaxScale(prefix+"tax_rate", *it.TaxRate, moneyScale, v)
		}
	}
	return v.Err()
}

// Renderer produces the invoice document after commit.
type Renderer interface {
	Create(tx *gorm.DB, orderID uint) (*models.Invoice, error)
	Render(ctx context.Context, invoiceID uint) (*models.Invoice, error)
}

// Engine is the order engine.
type Engine struct {
	db       *gorm.DB
	catalog  *catalog.Service
	clients  *clients.Registry
	invoices Renderer
	events   events.Publisher
	log      *zap.Logger
}

func NewEngine(db *gorm.DB, cat *catalog.Service, reg *clients.Registry, inv Renderer, pub events.Publisher, log *zap.Logger) *Engine {
	return &Engine{db: db, catalog: cat, clients: reg, invoices: inv, events: pub, log: log}
}

// PlaceOrder validates in, then commits the order with its items, stock decrements
// and invoice record in one transaction. The invoice document is rendered and the
// order event published after commit; failures there are logged and do not undo the order.
func (e *Engine) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "orders.PlaceOrder")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.client_id", int64(in.ClientID)),
		attribute.String("order.store", string(in.Store)),
		attribute.Int("order.items", len(in.Items)),
	)

	fail := func(err error) (*models.Order, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.log.Warn("order placement failed", zap.Uint("client_id", in.ClientID), zap.String("store", string(in.Store)), zap.Error(err))
		return nil, &PlacementError{Cause: err}
	}

	if err := in.Validate(); err != nil {
		return fail(err)
	}

	var order models.Order
	var invoice *models.Invoice
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := e.clients.Exists(tx, in.ClientID)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(clients.ErrClientNotFound, "client %d", in.ClientID)
		}
		var users int64
		if err := tx.Model(&models.User{}).Where("id = ?", in.UserID).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			return errors.Wrapf(ErrUserNotFound, "user %d", in.UserID)
		}

		order = models.Order{
			ClientID:           in.ClientID,
			UserID:             in.UserID,
			Store:              in.Store,
			PaymentMethod:      in.PaymentMethod,
			Installments:       in.Installments,
			Status:             models.OrderStatusPending,
			DiscountAmount:     in.DiscountAmount,
			DiscountPercentage: in.DiscountPercentage,
			Notes:              in.Notes,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return errors.Wrap(err, "create order")
		}

		order.Items = make([]models.OrderItem, 0, len(in.Items))
		for i, req := range in.Items {
			product, err := e.lockProduct(tx, req.ProductID)
			if err != nil {
				return err
			}
			item := models.OrderItem{
				OrderID:          order.ID,
				Position:         i + 1,
				ProductID:        product.ID,
				Quantity:         req.Quantity,
				UnitPriceExclTax: priceOr(req.UnitPriceExclTax, product.PriceExclTax),
				UnitPriceInclTax: priceOr(req.UnitPriceInclTax, product.PriceInclTax),
				TaxRate:          priceOr(req.TaxRate, product.TaxRate),
			}
			if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
				return errors.Wrapf(err, "create item %d", i+1)
			}
			order.Items = append(order.Items, item)

			if _, err := e.catalog.DecrementStock(tx, product.ID, in.Store, req.Quantity, order.ID); err != nil {
				return err
			}
		}

		subtotal := order.ItemsSubtotalExclTax()
		total := order.ItemsSubtotalInclTax()
		completedAt := time.Now()
		if err := tx.Model(&order).Omit(clause.Associations).Updates(map[string]any{
			"subtotal_excl_tax": subtotal,
			"total_tax":         total.Sub(subtotal),
			"total_incl_tax":    total,
			"status":            models.OrderStatusCompleted,
			"completed_at":      completedAt,
		}).Error; err != nil {
			return errors.Wrap(err, "update order totals")
		}

		invoice, err = e.invoices.Create(tx, order.ID)
		return err
	})
	if err != nil {
		return fail(err)
	}

	span.SetAttributes(attribute.String("order.number", order.OrderNumber), attribute.String("invoice.number", invoice.Number))
	e.log.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("invoice_number", invoice.Number),
		zap.String("store", string(order.Store)),
	)

	if _, err := e.invoices.Render(ctx, invoice.ID); err != nil {
		e.log.Error("invoice render failed", zap.String("invoice_number", invoice.Number), zap.Error(err))
	}

	placed, err := e.Get(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if err := e.events.PublishOrderPlaced(ctx, events.NewOrderPlaced(placed)); err != nil {
		e.log.Error("order event not published", zap.String("order_number", placed.OrderNumber), zap.Error(err))
	}
	for _, it := range placed.Items {
		if it.Product != nil && it.Product.IsLowStock() {
			e.log.Warn("product stock low",
				zap.String("reference", it.Product.Reference),
				zap.Int("stock", it.Product.TotalStock()),
				zap.Int("alert_stock", it.Product.AlertStock),
			)
		}
	}
	return placed, nil
}

// lockProduct loads the product row, holding a row lock on postgres until commit.
func (e *Engine) lockProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p models.Product
	err := q.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(catalog.ErrProductNotFound, "product %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns the order with items, products, client and invoice.
func (e *Engine) Get(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := e.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		Preload("Items.Product").
		Preload("Client").
		Preload("Invoice").
		First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Store    models.Store
	Status   models.OrderStatus
	ClientID uint
	Offset   int
	Limit    int
}

// List returns orders newest first, with client and invoice.
func (e *Engine) List(ctx context.Context, f Filter) ([]models.Order, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	q := e.db.WithContext(ctx).Model(&models.Order{})
	if f.Store != "" {
		q = q.Where("store = ?", f.Store)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	var out []models.Order
	err := q.Preload("Client").Preload("Invoice").
		Order("created_at DESC").Order("id DESC").
		Offset(f.Offset).Limit(limit).
		Find(&out).Error
	return out, err
}

// Delete removes an order and its items. Invoiced orders cannot be deleted.
func (e *Engine) Delete(ctx context.Context, id uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.Select("id").First(&o, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		var invoiced int64
		if err := tx.Model(&models.Invoice{}).Where("order_id = ?", id).Count(&invoiced).Error; err != nil {
			return err
		}
		if invoiced > 0 {
			return ErrOrderInvoiced
		}
		return tx.Delete(&models.Order{}, id).Error
	})
}

func priceOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v == nil {
		return fallback
	}
	return *v
}
