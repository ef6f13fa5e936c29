package invoices

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/diewo77/go-retail/internal/dbtest"
	"github.com/diewo77/go-retail/internal/models"
	"github.com/diewo77/go-retail/internal/pdf"
	"github.com/diewo77/go-retail/internal/storage"
)

func setup(t *testing.T) (*gorm.DB, *Generator) {
	t.Helper()
	db := dbtest.New(t)
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return db, NewGenerator(db, store, &pdf.Renderer{Compress: false}, "fr", zaptest.NewLogger(t))
}

// seedOrder writes a completed order of two units at 100.00 excl. / 120.00 incl.
func seedOrder(t *testing.T, db *gorm.DB, status models.OrderStatus) (*models.Order, *models.Client) {
	t.Helper()
	user := models.User{Username: "v-" + strings.ReplaceAll(t.Name(), "/", "-"), Role: models.RoleSeller, IsActive: true}
	client := models.Client{FirstName: "Jeanne", LastName: "Martin", City: "Garches", PostalCode: "92380", IsActive: true}
	product := models.Product{Reference: "VEL-1", Name: "Vélo de ville", Type: models.ProductTypeBike,
		PriceExclTax: decimal.NewFromInt(100), PriceInclTax: decimal.NewFromInt(120), TaxRate: decimal.NewFromInt(20), IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&client).Error)
	require.NoError(t, db.Create(&product).Error)

	order := models.Order{
		ClientID: client.ID, UserID: user.ID, Store: models.StoreGarches,
		PaymentMethod: models.PaymentCard, Installments: 1, Status: status,
		SubtotalExclTax: decimal.NewFromInt(200), TotalTax: decimal.NewFromInt(40), TotalInclTax: decimal.NewFromInt(240),
	}
	require.NoError(t, db.Create(&order).Error)
	item := models.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: 2,
		UnitPriceExclTax: decimal.NewFromInt(100), UnitPriceInclTax: decimal.NewFromInt(120), TaxRate: decimal.NewFromInt(20)}
	require.NoError(t, db.Create(&item).Error)
	return &order, &client
}

func TestFetchBeforeRender(t *testing.T) {
	ctx := context.Background()
	db, g := setup(t)
	order, _ := seedOrder(t, db, models.OrderStatusCompleted)
	inv, err := g.Create(db, order.ID)
	require.NoError(t, err)
	require.NotEmpty(t, inv.Number)

	art, err := g.Fetch(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrNotGenerated)
	assert.Nil(t, art)

	_, err = g.Fetch(ctx, 999)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestRenderTwiceKeepsNumber(t *testing.T) {
	ctx := context.Background()
	db, g := setup(t)
	order, client := seedOrder(t, db, models.OrderStatusCompleted)
	inv, err := g.Create(db, order.ID)
	require.NoError(t, err)

	first, err := g.Render(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.Number, first.Number)
	assert.Equal(t, "invoice_"+inv.Number+".pdf", first.ArtifactName)

	art, err := g.Fetch(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice_"+inv.Number+".pdf", art.Name)
	body := string(art.Body)
	assert.True(t, strings.HasPrefix(body, "%PDF"))
	assert.Contains(t, body, inv.Number)
	assert.Contains(t, body, "240.00")
	assert.Contains(t, body, "Jeanne Martin")

	// Client data is read at render time.
	client.LastName = "Durand"
	require.NoError(t, db.Save(client).Error)

	second, err := g.Render(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.Number, second.Number)

	art, err = g.Fetch(ctx, inv.ID)
	require.NoError(t, err)
	assert.Contains(t, string(art.Body), "Jeanne Durand")
	assert.NotContains(t, string(art.Body), "Jeanne Martin")

	var stored models.Invoice
	require.NoError(t, db.First(&stored, inv.ID).Error)
	assert.Equal(t, inv.Number, stored.Number)
	assert.NotNil(t, stored.RenderedAt)
}

func TestRenderForOrder(t *testing.T) {
	ctx := context.Background()
	db, g := setup(t)

	order, _ := seedOrder(t, db, models.OrderStatusCompleted)
	inv, err := g.RenderForOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, inv.HasArtifact())

	again, err := g.RenderForOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, again.ID)
	assert.Equal(t, inv.Number, again.Number)

	var count int64
	db.Model(&models.Invoice{}).Where("order_id = ?", order.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	_, err = g.RenderForOrder(ctx, 12345)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestRenderForOrderRequiresCompleted(t *testing.T) {
	db, g := setup(t)
	order, _ := seedOrder(t, db, models.OrderStatusPending)
	_, err := g.RenderForOrder(context.Background(), order.ID)
	assert.ErrorIs(t, err, ErrOrderNotCompleted)
}

func TestInvoiceNumberIsUnique(t *testing.T) {
	db, g := setup(t)
	order, _ := seedOrder(t, db, models.OrderStatusCompleted)
	_, err := g.Create(db, order.ID)
	require.NoError(t, err)
	_, err = g.Create(db, order.ID)
	assert.Error(t, err, "an order has at most one invoice")
}

func TestMarkPaidAndDelete(t *testing.T) {
	ctx := context.Background()
	db, g := setup(t)
	order, _ := seedOrder(t, db, models.OrderStatusCompleted)
	inv, err := g.RenderForOrder(ctx, order.ID)
	require.NoError(t, err)

	paidAt := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	paid, err := g.MarkPaid(ctx, inv.ID, paidAt)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(paidAt))

	list, err := g.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, g.Delete(ctx, inv.ID))
	_, err = g.Get(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	var kept models.Order
	assert.NoError(t, db.First(&kept, order.ID).Error, "deleting the invoice keeps the order")
}
