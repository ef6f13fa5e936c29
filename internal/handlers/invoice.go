package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/go-retail/httpx"
	"github.com/diewo77/go-retail/internal/invoices"
)

type InvoiceHandler struct {
	invoices *invoices.Generator
	log      *zap.Logger
}

func NewInvoiceHandler(gen *invoices.Generator, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: gen, log: log}
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	list, err := h.invoices.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Render regenerates the document of an invoice.
func (h *InvoiceHandler) Render(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	inv, err := h.invoices.Render(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// RenderForOrder generates the invoice of a completed order, creating the record if needed.
func (h *InvoiceHandler) RenderForOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	inv, err := h.invoices.RenderForOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Download serves the stored PDF, or 404 not_generated before the first render.
func (h *InvoiceHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	art, err := h.invoices.Fetch(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.Attachment(w, "application/pdf", art.Name, art.Body)
}

type paidRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req paidRequest
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, &req); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	}
	var paidAt time.Time
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	inv, err := h.invoices.MarkPaid(r.Context(), id, paidAt)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.invoices.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
