// Package clients is the client registry.
package clients

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/diewo77/go-retail/internal/models"
	"github.com/diewo77/go-retail/validation"
)

var (
	ErrClientNotFound  = errors.New("client_not_found")
	ErrClientHasOrders = errors.New("client_has_orders")
)

// Input carries the writable client fields.
type Input struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	PostalCode string
	City       string
	IsActive   bool
}

func (in Input) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("first_name", in.FirstName, v)
	validation.Required("last_name", in.LastName, v)
	if e := strings.TrimSpace(in.Email); e != "" && !strings.Contains(e, "@") {
		v["email"] = "invalid_email"
	}
	return v
}

func (in Input) apply(c *models.Client) {
	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Address = in.Address
	c.PostalCode = in.PostalCode
	c.City = in.City
	c.IsActive = in.IsActive
}

type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry { return &Registry{db: db} }

func (r *Registry) Create(ctx context.Context, in Input) (*models.Client, error) {
	if v := in.Validate(); !v.Empty() {
		return nil, v
	}
	var c models.Client
	in.apply(&c)
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, errors.Wrap(err, "create client")
	}
	return &c, nil
}

func (r *Registry) Get(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Exists reports whether a client with this id is registered. It runs on the given
// handle so callers can check inside their own transaction.
func (r *Registry) Exists(tx *gorm.DB, id uint) (bool, error) {
	var n int64
	if err := tx.Model(&models.Client{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns clients ordered by last then first name, optionally filtered on a
// name, email or phone fragment.
func (r *Registry) List(ctx context.Context, search string, offset, limit int) ([]models.Client, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Model(&models.Client{})
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}
	var out []models.Client
	err := q.Order("last_name").Order("first_name").Order("id").Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}

func (r *Registry) Update(ctx context.Context, id uint, in Input) (*models.Client, error) {
	if v := in.Validate(); !v.Empty() {
		return nil, v
	}
	c, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, errors.Wrap(err, "update client")
	}
	return c, nil
}

// Delete removes a client without orders.
func (r *Registry) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := r.Exists(tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrClientNotFound
		}
		var orders int64
		if err := tx.Model(&models.Order{}).Where("client_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return ErrClientHasOrders
		}
		return tx.Delete(&models.Client{}, id).Error
	})
}
