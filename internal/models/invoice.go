package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-retail/internal/numbering"
)

// DefaultPaymentTerm is the delay between invoice date and due date.
const DefaultPaymentTerm = 30 * 24 * time.Hour

// Invoice is the billing record of a completed order. The rendered document is stored
// separately and referenced by ArtifactName.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Number is assigned on first insert and never regenerated.
	Number string `gorm:"size:40;uniqueIndex;not null;<-:create" json:"number"`

	OrderID uint   `gorm:"uniqueIndex;not null" json:"order_id"`
	Order   *Order `gorm:"constraint:OnDelete:RESTRICT" json:"-"`

	InvoiceDate time.Time  `gorm:"not null" json:"invoice_date"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	IsPaid      bool       `gorm:"not null" json:"is_paid"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`

	ArtifactName string     `gorm:"size:255" json:"artifact_name,omitempty"`
	RenderedAt   *time.Time `json:"rendered_at,omitempty"`
}

// BeforeCreate assigns the invoice number and dates.
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.Number == "" {
		i.Number = numbering.Next(numbering.InvoicePrefix)
	}
	if i.InvoiceDate.IsZero() {
		i.InvoiceDate = time.Now()
	}
	if i.DueDate == nil {
		due := i.InvoiceDate.Add(DefaultPaymentTerm)
		i.DueDate = &due
	}
	return nil
}

// HasArtifact reports whether a document has been rendered for this invoice.
func (i *Invoice) HasArtifact() bool {
	return i.ArtifactName != ""
}

// ArtifactFileName is the file name under which the rendered document is stored and offered for download.
func (i *Invoice) ArtifactFileName() string {
	return "invoice_" + i.Number + ".pdf"
}
