// Package reporting computes dashboard figures with plain SQL over the committed data.
package reporting

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/go-retail/internal/models"
)

const (
	LowStockThreshold = 5
	LowStockLimit     = 10
	RecentOrdersLimit = 10
)

// LowStockProduct is a product whose stock across stores is at or below the threshold.
type LowStockProduct struct {
	ID         uint   `db:"id" json:"id"`
	Reference  string `db:"reference" json:"reference"`
	Name       string `db:"name" json:"name"`
	TotalStock int    `db:"total_stock" json:"total_stock"`
}

// RecentOrder is an order summary with the client's name.
type RecentOrder struct {
	ID           uint               `db:"id" json:"id"`
	OrderNumber  string             `db:"order_number" json:"order_number"`
	ClientName   string             `db:"client_name" json:"client_name"`
	Store        models.Store       `db:"store" json:"store"`
	TotalInclTax decimal.Decimal    `db:"total_incl_tax" json:"total_incl_tax"`
	Status       models.OrderStatus `db:"status" json:"status"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
}

// Dashboard gathers every figure in one structure.
type Dashboard struct {
	TotalRevenue     decimal.Decimal   `json:"total_revenue"`
	TotalOrders      int64             `json:"total_orders"`
	ActiveClients    int64             `json:"active_clients"`
	ActiveProducts   int64             `json:"active_products"`
	LowStockProducts []LowStockProduct `json:"low_stock_products"`
	RecentOrders     []RecentOrder     `json:"recent_orders"`
}

// Service runs read-only aggregate queries. Nothing is cached.
type Service struct {
	db *sqlx.DB
}

// NewService shares the gorm connection pool.
func NewService(gdb *gorm.DB) (*Service, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "reporting: sql handle")
	}
	driver := "pgx"
	if gdb.Dialector.Name() == "sqlite" {
		driver = "sqlite3"
	}
	return &Service{db: sqlx.NewDb(sqlDB, driver)}, nil
}

// TotalRevenue sums the incl.-tax totals of completed orders, rounded to cents.
// sqlite sums decimal columns as floating point.
func (s *Service) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	q := s.db.Rebind(`SELECT COALESCE(SUM(total_incl_tax), 0) FROM orders WHERE status = ?`)
	if err := s.db.GetContext(ctx, &total, q, string(models.OrderStatusCompleted)); err != nil {
		return decimal.Zero, errors.Wrap(err, "total revenue")
	}
	return total.Round(2), nil
}

// TotalOrders counts orders of every status.
func (s *Service) TotalOrders(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM orders`)
}

func (s *Service) ActiveClients(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM clients WHERE is_active = ?`, true)
}

func (s *Service) ActiveProducts(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM products WHERE is_active = ?`, true)
}

func (s *Service) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(query), args...); err != nil {
		return 0, errors.Wrap(err, "count")
	}
	return n, nil
}

// LowStock lists up to ten products with the lowest total stock at or below the threshold.
func (s *Service) LowStock(ctx context.Context) ([]LowStockProduct, error) {
	out := []LowStockProduct{}
	q := s.db.Rebind(`
		SELECT id, reference, name, stock_ville_avray + stock_garches AS total_stock
		FROM products
		WHERE stock_ville_avray + stock_garches <= ?
		ORDER BY total_stock ASC, id ASC
		LIMIT ?`)
	if err := s.db.SelectContext(ctx, &out, q, LowStockThreshold, LowStockLimit); err != nil {
		return nil, errors.Wrap(err, "low stock")
	}
	return out, nil
}

// RecentOrders returns the ten newest orders.
func (s *Service) RecentOrders(ctx context.Context) ([]RecentOrder, error) {
	out := []RecentOrder{}
	q := s.db.Rebind(`
		SELECT o.id, o.order_number, c.full_name AS client_name, o.store,
		       o.total_incl_tax, o.status, o.created_at
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT ?`)
	if err := s.db.SelectContext(ctx, &out, q, RecentOrdersLimit); err != nil {
		return nil, errors.Wrap(err, "recent orders")
	}
	return out, nil
}

// Dashboard computes all figures.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	var err error
	if d.TotalRevenue, err = s.TotalRevenue(ctx); err != nil {
		return nil, err
	}
	if d.TotalOrders, err = s.TotalOrders(ctx); err != nil {
		return nil, err
	}
	if d.ActiveClients, err = s.ActiveClients(ctx); err != nil {
		return nil, err
	}
	if d.ActiveProducts, err = s.ActiveProducts(ctx); err != nil {
		return nil, err
	}
	if d.LowStockProducts, err = s.LowStock(ctx); err != nil {
		return nil, err
	}
	if d.RecentOrders, err = s.RecentOrders(ctx); err != nil {
		return nil, err
	}
	return &d, nil
}
