package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestStore_Valid(t *testing.T) {
	for _, s := range Stores() {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
		if s.StockColumn() == "" {
			t.Errorf("%q has no stock column", s)
		}
	}
	if Store("paris").Valid() {
		t.Error("unknown store reported as valid")
	}
	if got := StoreVilleAvray.DisplayName(); got != "Ville d'Avray" {
		t.Errorf("DisplayName() = %q", got)
	}
}

func TestProduct_Stock(t *testing.T) {
	p := &Product{StockVilleAvray: 3, StockGarches: 2, AlertStock: 5}
	if got := p.StockAt(StoreGarches); got != 2 {
		t.Errorf("StockAt(garches) = %d, want 2", got)
	}
	if got := p.TotalStock(); got != 5 {
		t.Errorf("TotalStock() = %d, want 5", got)
	}
	if !p.IsLowStock() {
		t.Error("total stock at alert level should be low")
	}
	p.StockGarches = 10
	if p.IsLowStock() {
		t.Error("stock above alert level reported low")
	}
}

func TestClient_DisplayName(t *testing.T) {
	c := &Client{FirstName: " Jeanne ", LastName: "Martin"}
	if err := c.BeforeSave(nil); err != nil {
		t.Fatal(err)
	}
	if c.FullName != "Jeanne Martin" {
		t.Errorf("FullName = %q", c.FullName)
	}
}

func TestOrderItem_ComputeSubtotals(t *testing.T) {
	it := &OrderItem{
		Quantity:         3,
		UnitPriceExclTax: decimal.RequireFromString("33.33"),
		UnitPriceInclTax: decimal.RequireFromString("40.00"),
	}
	it.ComputeSubtotals()
	if !it.SubtotalExclTax.Equal(decimal.RequireFromString("99.99")) {
		t.Errorf("SubtotalExclTax = %s", it.SubtotalExclTax)
	}
	if !it.SubtotalInclTax.Equal(decimal.RequireFromString("120")) {
		t.Errorf("SubtotalInclTax = %s", it.SubtotalInclTax)
	}
}

func TestOrder_BeforeCreate(t *testing.T) {
	o := &Order{}
	if err := o.BeforeCreate(nil); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(o.OrderNumber, "CMD-") {
		t.Errorf("OrderNumber = %q", o.OrderNumber)
	}
	if o.Status != OrderStatusPending {
		t.Errorf("Status = %q", o.Status)
	}
	before := o.OrderNumber
	_ = o.BeforeCreate(nil)
	if o.OrderNumber != before {
		t.Error("existing order number was regenerated")
	}
}

func TestInvoice_BeforeCreate(t *testing.T) {
	inv := &Invoice{}
	if err := inv.BeforeCreate(nil); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(inv.Number, "FAC-") {
		t.Errorf("Number = %q", inv.Number)
	}
	if inv.DueDate == nil || !inv.DueDate.Equal(inv.InvoiceDate.Add(DefaultPaymentTerm)) {
		t.Errorf("DueDate = %v", inv.DueDate)
	}
	if inv.HasArtifact() {
		t.Error("new invoice should have no artifact")
	}
	if got := inv.ArtifactFileName(); got != "invoice_"+inv.Number+".pdf" {
		t.Errorf("ArtifactFileName() = %q", got)
	}
}

func TestPaymentMethod_Valid(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentCash, PaymentCard, PaymentCheck, PaymentTransfer} {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if PaymentMethod("bitcoin").Valid() {
		t.Error("unknown payment method reported as valid")
	}
}
