package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/diewo77/go-retail/auth"
	"github.com/diewo77/go-retail/httpx"
	"github.com/diewo77/go-retail/internal/models"
	"github.com/diewo77/go-retail/internal/orders"
)

type OrderHandler struct {
	engine *orders.Engine
	log    *zap.Logger
}

func NewOrderHandler(engine *orders.Engine, log *zap.Logger) *OrderHandler {
	return &OrderHandler{engine: engine, log: log}
}

type orderItemRequest struct {
	ProductID        uint             `json:"product_id"`
	Quantity         int              `json:"quantity"`
	UnitPriceExclTax *decimal.Decimal `json:"unit_price_excl_tax"`
	UnitPriceInclTax *decimal.Decimal `json:"unit_price_incl_tax"`
	TaxRate          *decimal.Decimal `json:"tax_rate"`
}

type orderRequest struct {
	ClientID           uint                 `json:"client_id"`
	Store              models.Store         `json:"store"`
	PaymentMethod      models.PaymentMethod `json:"payment_method"`
	Installments       int                  `json:"installments"`
	DiscountAmount     decimal.Decimal      `json:"discount_amount"`
	DiscountPercentage decimal.Decimal      `json:"discount_percentage"`
	Notes              string               `json:"notes"`
	Items              []orderItemRequest   `json:"items"`
}

// Place records a sale for the acting user. Every failure is reported as order_placement_failed.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "order_placement_failed", (&orders.PlacementError{Cause: err}).Error())
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	in := orders.PlaceOrderInput{
		ClientID:           req.ClientID,
		UserID:             userID,
		Store:              req.Store,
		PaymentMethod:      req.PaymentMethod,
		Installments:       req.Installments,
		DiscountAmount:     req.DiscountAmount,
		DiscountPercentage: req.DiscountPercentage,
		Notes:              req.Notes,
		Items:              make([]orders.ItemInput, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, orders.ItemInput{
			ProductID:        it.ProductID,
			Quantity:         it.Quantity,
			UnitPriceExclTax: it.UnitPriceExclTax,
			UnitPriceInclTax: it.UnitPriceInclTax,
			TaxRate:          it.TaxRate,
		})
	}

	order, err := h.engine.PlaceOrder(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// List supports ?store=, ?status= and ?client_id= filters.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	q := r.URL.Query()
	list, err := h.engine.List(r.Context(), orders.Filter{
		Store:    models.Store(q.Get("store")),
		Status:   models.OrderStatus(q.Get("status")),
		ClientID: uint(max(queryInt(r, "client_id"), 0)),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *OrderHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	o, err := h.engine.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.engine.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
