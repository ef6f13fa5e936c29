package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/diewo77/go-retail/httpx"
	"github.com/diewo77/go-retail/internal/catalog"
	"github.com/diewo77/go-retail/internal/models"
)

type ProductHandler struct {
	catalog *catalog.Service
	log     *zap.Logger
}

func NewProductHandler(cat *catalog.Service, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: cat, log: log}
}

type productRequest struct {
	Reference       string             `json:"reference"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Type            models.ProductType `json:"product_type"`
	Brand           string             `json:"brand"`
	Size            string             `json:"size"`
	Barcode         string             `json:"barcode"`
	CategoryID      *uint              `json:"category_id"`
	PriceExclTax    decimal.Decimal    `json:"price_excl_tax"`
	PriceInclTax    decimal.Decimal    `json:"price_incl_tax"`
	TaxRate         decimal.Decimal    `json:"tax_rate"`
	StockVilleAvray int                `json:"stock_ville_avray"`
	StockGarches    int                `json:"stock_garches"`
	AlertStock      *int               `json:"alert_stock"`
	IsActive        *bool              `json:"is_active"`
	IsVisible       *bool              `json:"is_visible"`
}

func (p productRequest) input() catalog.ProductInput {
	in := catalog.ProductInput{
		Reference:       p.Reference,
		Name:            p.Name,
		Description:     p.Description,
		Type:            p.Type,
		Brand:           p.Brand,
		Size:            p.Size,
		Barcode:         p.Barcode,
		CategoryID:      p.CategoryID,
		PriceExclTax:    p.PriceExclTax,
		PriceInclTax:    p.PriceInclTax,
		TaxRate:         p.TaxRate,
		StockVilleAvray: p.StockVilleAvray,
		StockGarches:    p.StockGarches,
		AlertStock:      models.DefaultAlertStock,
		IsActive:        true,
		IsVisible:       true,
	}
	if in.Type == "" {
		in.Type = models.ProductTypeBike
	}
	if p.AlertStock != nil {
		in.AlertStock = *p.AlertStock
	}
	if p.IsActive != nil {
		in.IsActive = *p.IsActive
	}
	if p.IsVisible != nil {
		in.IsVisible = *p.IsVisible
	}
	return in
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	products, err := h.catalog.List(r.Context(), catalog.Page{Offset: offset, Limit: limit})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.Decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	p, err := h.catalog.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// ByBarcode serves the scanner lookup; ?reference= is accepted as a fallback.
func (h *ProductHandler) ByBarcode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		p   *models.Product
		err error
	)
	if code := q.Get("code"); code != "" {
		p, err = h.catalog.GetByBarcode(r.Context(), code)
	} else {
		p, err = h.catalog.GetByReference(r.Context(), q.Get("reference"))
	}
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req productRequest
	if err := httpx.Decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	p, err := h.catalog.Update(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type stockRequest struct {
	Store models.Store `json:"store"`
	Delta int          `json:"delta"`
	Note  string       `json:"note"`
}

func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req stockRequest
	if err := httpx.Decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	p, err := h.catalog.AdjustStock(r.Context(), id, req.Store, req.Delta, req.Note)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	offset, limit := pageParams(r)
	mv, err := h.catalog.Movements(r.Context(), id, catalog.Page{Offset: offset, Limit: limit})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, mv)
}

func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cats)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ProductHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httpx.Decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.catalog.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}
