// Package pdf renders invoice documents as A4 PDF.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/diewo77/go-retail/i18n"
)

// ClientBlock is the customer identity printed on the invoice.
type ClientBlock struct {
	Name       string
	Address    string
	PostalCode string
	City       string
	Email      string
	Phone      string
}

// Line is one row of the item table.
type Line struct {
	Product          string
	Quantity         int
	UnitPriceExclTax decimal.Decimal
	TaxRate          decimal.Decimal
	SubtotalInclTax  decimal.Decimal
}

// InvoiceData is everything printed on an invoice. Totals are printed as given.
type InvoiceData struct {
	Lang          string
	Number        string
	OrderNumber   string
	InvoiceDate   time.Time
	DueDate       *time.Time
	PaidAt        *time.Time
	StoreName     string
	Client        ClientBlock
	Lines         []Line
	PaymentMethod string
	Installments  int

	SubtotalExclTax decimal.Decimal
	TotalTax        decimal.Decimal
	Discount        decimal.Decimal
	TotalInclTax    decimal.Decimal
}

// Renderer produces invoice PDFs.
type Renderer struct {
	// Compress deflates page streams. Tests turn it off to inspect the text.
	Compress bool
}

func NewRenderer() *Renderer { return &Renderer{Compress: true} }

const (
	pageMargin   = 15.0
	bottomLimit  = 265.0
	rowHeight    = 8.0
	dateLayout   = "02/01/2006"
	currencyUnit = " €"
)

// column widths: product, qty, unit price, tax, total (sum 180mm)
var colWidths = []float64{80, 18, 30, 20, 32}

// Money formats an amount with two decimals and the currency suffix.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2) + currencyUnit
}

// Rate formats a percentage rate.
func Rate(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// Invoice renders d and returns the document bytes.
func (r *Renderer) Invoice(d InvoiceData) ([]byte, error) {
	lang := d.Lang
	if !i18n.Supported(lang) {
		lang = i18n.DefaultLang
	}
	t := func(code string) string { return i18n.T(lang, code) }
	tf := func(code string, args ...any) string { return i18n.Tf(lang, code, args...) }

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(r.Compress)
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, 20)
	doc.SetTitle(d.Number, true)
	doc.SetCreator("go-retail", true)
	doc.AliasNbPages("")
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Arial", "I", 8)
		doc.CellFormat(0, 10, tr(tf("invoice.page", doc.PageNo())), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	// title
	doc.SetFont("Arial", "B", 18)
	doc.CellFormat(0, 12, tr(tf("invoice.title", d.Number)), "", 1, "L", false, 0, "")
	doc.SetFont("Arial", "", 10)
	doc.CellFormat(0, 5, tr(tf("invoice.date", d.InvoiceDate.Format(dateLayout))), "", 1, "L", false, 0, "")
	if d.DueDate != nil {
		doc.CellFormat(0, 5, tr(tf("invoice.due_date", d.DueDate.Format(dateLayout))), "", 1, "L", false, 0, "")
	}
	if d.OrderNumber != "" {
		doc.CellFormat(0, 5, tr(tf("invoice.order", d.OrderNumber)), "", 1, "L", false, 0, "")
	}
	doc.Ln(6)

	// store and client blocks side by side
	top := doc.GetY()
	doc.SetFont("Arial", "B", 11)
	doc.CellFormat(90, 6, tr(tf("invoice.store", d.StoreName)), "", 2, "L", false, 0, "")
	doc.SetFont("Arial", "", 10)
	doc.MultiCell(90, 5, tr(t("invoice.store_address")+"\n"+t("invoice.store_phone")+"\n"+t("invoice.store_email")), "", "L", false)
	storeBottom := doc.GetY()

	doc.SetXY(pageMargin+100, top)
	doc.SetFont("Arial", "B", 11)
	doc.CellFormat(80, 6, tr(t("invoice.client")), "", 2, "L", false, 0, "")
	doc.SetFont("Arial", "", 10)
	doc.SetX(pageMargin + 100)
	doc.MultiCell(80, 5, tr(clientText(d.Client)), "", "L", false)
	if doc.GetY() < storeBottom {
		doc.SetY(storeBottom)
	}
	doc.Ln(8)

	// items
	header := func() {
		doc.SetFont("Arial", "B", 10)
		doc.SetFillColor(230, 230, 230)
		cols := []string{"invoice.col.product", "invoice.col.quantity", "invoice.col.unit_price", "invoice.col.tax_rate", "invoice.col.total"}
		for i, c := range cols {
			ln := 0
			if i == len(cols)-1 {
				ln = 1
			}
			doc.CellFormat(colWidths[i], rowHeight, tr(t(c)), "1", ln, "C", true, 0, "")
		}
		doc.SetFont("Arial", "", 10)
	}
	header()
	for _, l := range d.Lines {
		if doc.GetY()+rowHeight > bottomLimit {
			doc.AddPage()
			header()
		}
		doc.CellFormat(colWidths[0], rowHeight, fit(doc, tr, l.Product, colWidths[0]-2), "1", 0, "L", false, 0, "")
		doc.CellFormat(colWidths[1], rowHeight, fmt.Sprintf("%d", l.Quantity), "1", 0, "C", false, 0, "")
		doc.CellFormat(colWidths[2], rowHeight, tr(Money(l.UnitPriceExclTax)), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[3], rowHeight, Rate(l.TaxRate), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[4], rowHeight, tr(Money(l.SubtotalInclTax)), "1", 1, "R", false, 0, "")
	}
	doc.Ln(6)

	// totals
	if doc.GetY()+4*7 > bottomLimit {
		doc.AddPage()
	}
	labelX := pageMargin + 100.0
	total := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		doc.SetFont("Arial", style, 11)
		doc.SetX(labelX)
		doc.CellFormat(45, 7, tr(label), "", 0, "L", false, 0, "")
		doc.CellFormat(35, 7, tr(value), "", 1, "R", false, 0, "")
	}
	total(t("invoice.subtotal"), Money(d.SubtotalExclTax), false)
	total(t("invoice.tax"), Money(d.TotalTax), false)
	total(t("invoice.discount"), Money(d.Discount), false)
	total(t("invoice.total"), Money(d.TotalInclTax), true)
	doc.Ln(6)

	doc.SetFont("Arial", "", 10)
	if d.PaymentMethod != "" {
		installments := d.Installments
		if installments < 1 {
			installments = 1
		}
		doc.CellFormat(0, 6, tr(tf("invoice.payment", t("payment."+d.PaymentMethod), installments)), "", 1, "L", false, 0, "")
	}
	if d.PaidAt != nil {
		doc.CellFormat(0, 6, tr(tf("invoice.paid", d.PaidAt.Format(dateLayout))), "", 1, "L", false, 0, "")
	}
	doc.Ln(10)
	doc.SetFont("Arial", "I", 11)
	doc.CellFormat(0, 8, tr(t("invoice.footer")), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "render invoice pdf")
	}
	return buf.Bytes(), nil
}

func clientText(c ClientBlock) string {
	text := c.Name
	add := func(s string) {
		if s != "" {
			text += "\n" + s
		}
	}
	add(c.Address)
	city := c.PostalCode
	if c.City != "" {
		if city != "" {
			city += " "
		}
		city += c.City
	}
	add(city)
	add(c.Email)
	add(c.Phone)
	return text
}

// fit translates s with tr and shortens it with an ellipsis until it fits in width.
// Widths are measured on the translated text, as it is drawn.
func fit(doc *gofpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if out := tr(s); doc.GetStringWidth(out) <= width {
		return out
	}
	r := []rune(s)
	for len(r) > 0 && doc.GetStringWidth(tr(string(r)+"...")) > width {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "...")
}
