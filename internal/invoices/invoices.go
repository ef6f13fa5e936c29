// Package invoices creates invoice records for completed orders and renders their documents.
package invoices

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/go-retail/internal/models"
	"github.com/diewo77/go-retail/internal/pdf"
	"github.com/diewo77/go-retail/internal/storage"
)

var (
	ErrInvoiceNotFound   = errors.New("invoice_not_found")
	ErrOrderNotFound     = errors.New("order_not_found")
	ErrOrderNotCompleted = errors.New("order_not_completed")
	ErrNotGenerated      = errors.New("not_generated")
)

var tracer = otel.Tracer("github.com/diewo77/go-retail/internal/invoices")

// Artifact is a rendered invoice ready for download.
type Artifact struct {
	Name string
	Body []byte
}

// Generator owns invoice records and their rendered documents.
type Generator struct {
	db       *gorm.DB
	store    storage.Store
	renderer *pdf.Renderer
	lang     string
	log      *zap.Logger
}

func NewGenerator(db *gorm.DB, store storage.Store, renderer *pdf.Renderer, lang string, log *zap.Logger) *Generator {
	return &Generator{db: db, store: store, renderer: renderer, lang: lang, log: log}
}

// Create inserts the invoice of a completed order on tx. The number is assigned here,
// once, and is never regenerated by later renders.
func (g *Generator) Create(tx *gorm.DB, orderID uint) (*models.Invoice, error) {
	inv := models.Invoice{OrderID: orderID}
	if err := tx.Omit(clause.Associations).Create(&inv).Error; err != nil {
		return nil, errors.Wrap(err, "create invoice")
	}
	return &inv, nil
}

func (g *Generator) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := g.db.WithContext(ctx).First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns invoices, newest first.
func (g *Generator) List(ctx context.Context, offset, limit int) ([]models.Invoice, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []models.Invoice
	err := g.db.WithContext(ctx).Order("id DESC").Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}

// Render builds the invoice document from current order and client data and stores it,
// replacing any earlier artifact.
func (g *Generator) Render(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	ctx, span := tracer.Start(ctx, "invoices.Render")
	defer span.End()
	span.SetAttributes(attribute.Int64("invoice.id", int64(invoiceID)))

	inv, err := g.loadForRender(ctx, invoiceID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("invoice.number", inv.Number))

	body, err := g.renderer.Invoice(g.documentData(inv))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	name := inv.ArtifactFileName()
	if err := g.store.Put(ctx, name, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	if err := g.db.WithContext(ctx).Model(&models.Invoice{}).Where("id = ?", inv.ID).
		UpdateColumns(map[string]any{"artifact_name": name, "rendered_at": now, "updated_at": now}).Error; err != nil {
		return nil, errors.Wrap(err, "link invoice artifact")
	}
	inv.ArtifactName = name
	inv.RenderedAt = &now
	inv.Order = nil

	g.log.Info("invoice rendered",
		zap.Uint("invoice_id", inv.ID),
		zap.String("number", inv.Number),
		zap.Int("bytes", len(body)),
	)
	return inv, nil
}

// RenderForOrder renders the invoice of a completed order, creating the invoice
// record first when the order has none.
func (g *Generator) RenderForOrder(ctx context.Context, orderID uint) (*models.Invoice, error) {
	var order models.Order
	if err := g.db.WithContext(ctx).Preload("Invoice").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, ErrOrderNotCompleted
	}
	inv := order.Invoice
	if inv == nil {
		created, err := g.Create(g.db.WithContext(ctx), order.ID)
		if err != nil {
			return nil, err
		}
		inv = created
	}
	return g.Render(ctx, inv.ID)
}

// Fetch returns the stored document. It fails with ErrNotGenerated until Render has run.
func (g *Generator) Fetch(ctx context.Context, invoiceID uint) (*Artifact, error) {
	inv, err := g.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.HasArtifact() {
		return nil, ErrNotGenerated
	}
	body, err := g.store.Get(ctx, inv.ArtifactName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotGenerated
	}
	if err != nil {
		return nil, err
	}
	return &Artifact{Name: inv.ArtifactFileName(), Body: body}, nil
}

// MarkPaid flags the invoice as settled.
func (g *Generator) MarkPaid(ctx context.Context, invoiceID uint, paidAt time.Time) (*models.Invoice, error) {
	inv, err := g.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	if err := g.db.WithContext(ctx).Model(inv).Updates(map[string]any{"is_paid": true, "paid_at": paidAt}).Error; err != nil {
		return nil, errors.Wrap(err, "mark invoice paid")
	}
	return g.Get(ctx, invoiceID)
}

// Delete removes the invoice and its document. The order is kept.
func (g *Generator) Delete(ctx context.Context, invoiceID uint) error {
	inv, err := g.Get(ctx, invoiceID)
	if err != nil {
		return err
	}
	if err := g.db.WithContext(ctx).Delete(&models.Invoice{}, inv.ID).Error; err != nil {
		return errors.Wrap(err, "delete invoice")
	}
	if inv.HasArtifact() {
		if err := g.store.Delete(ctx, inv.ArtifactName); err != nil {
			g.log.Warn("invoice artifact not removed", zap.String("name", inv.ArtifactName), zap.Error(err))
		}
	}
	return nil
}

func (g *Generator) loadForRender(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := g.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Client").
		Preload("Order.Items", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		Preload("Order.Items.Product").
		First(&inv, invoiceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	if inv.Order == nil {
		return nil, ErrOrderNotFound
	}
	return &inv, nil
}

func (g *Generator) documentData(inv *models.Invoice) pdf.InvoiceData {
	o := inv.Order
	d := pdf.InvoiceData{
		Lang:            g.lang,
		Number:          inv.Number,
		OrderNumber:     o.OrderNumber,
		InvoiceDate:     inv.InvoiceDate,
		DueDate:         inv.DueDate,
		PaidAt:          inv.PaidAt,
		StoreName:       o.Store.DisplayName(),
		PaymentMethod:   string(o.PaymentMethod),
		Installments:    o.Installments,
		SubtotalExclTax: o.SubtotalExclTax,
		TotalTax:        o.TotalTax,
		Discount:        o.DiscountAmount,
		TotalInclTax:    o.TotalInclTax,
	}
	if c := o.Client; c != nil {
		d.Client = pdf.ClientBlock{
			Name:       c.FullName,
			Address:    c.Address,
			PostalCode: c.PostalCode,
			City:       c.City,
			Email:      c.Email,
			Phone:      c.Phone,
		}
	}
	for _, it := range o.Items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		d.Lines = append(d.Lines, pdf.Line{
			Product:          name,
			Quantity:         it.Quantity,
			UnitPriceExclTax: it.UnitPriceExclTax,
			TaxRate:          it.TaxRate,
			SubtotalInclTax:  it.SubtotalInclTax,
		})
	}
	return d
}
