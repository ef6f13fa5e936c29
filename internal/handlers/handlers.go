// Package handlers exposes the retail components as thin JSON endpoints.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/go-retail/httpx"
	"github.com/diewo77/go-retail/i18n"
	"github.com/diewo77/go-retail/internal/catalog"
	"github.com/diewo77/go-retail/internal/clients"
	"github.com/diewo77/go-retail/internal/invoices"
	"github.com/diewo77/go-retail/internal/orders"
	"github.com/diewo77/go-retail/validation"
)

var errInvalidID = errors.New("invalid_id")

// writeError maps component errors to status codes and stable error codes.
// Violation details are translated when the request sends Accept-Language.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var placement *orders.PlacementError
	var violations validation.Violations
	switch {
	case errors.As(err, &placement):
		httpx.JSONError(w, http.StatusBadRequest, "order_placement_failed", placement.Error())
	case errors.As(err, &violations):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", localize(r, violations))
	case errors.Is(err, httpx.ErrInvalidBody):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
	case errors.Is(err, errInvalidID), errors.Is(err, catalog.ErrInvalidStore):
		httpx.JSONError(w, http.StatusBadRequest, errors.Cause(err).Error(), nil)
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, clients.ErrClientNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, invoices.ErrInvoiceNotFound),
		errors.Is(err, invoices.ErrOrderNotFound),
		errors.Is(err, invoices.ErrNotGenerated):
		httpx.JSONError(w, http.StatusNotFound, errors.Cause(err).Error(), nil)
	case errors.Is(err, catalog.ErrProductInUse),
		errors.Is(err, catalog.ErrInsufficientStock),
		errors.Is(err, clients.ErrClientHasOrders),
		errors.Is(err, orders.ErrOrderInvoiced),
		errors.Is(err, invoices.ErrOrderNotCompleted):
		httpx.JSONError(w, http.StatusConflict, errors.Cause(err).Error(), nil)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		httpx.JSONError(w, http.StatusConflict, "already_exists", nil)
	default:
		log.Error("request failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func localize(r *http.Request, v validation.Violations) map[string]string {
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return v
	}
	return i18n.Map(i18n.DetectLanguage(header), v)
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// pageParams reads ?page= (1-based) and ?limit=.
func pageParams(r *http.Request) (offset, limit int) {
	page := queryInt(r, "page")
	if page < 1 {
		page = 1
	}
	limit = queryInt(r, "limit")
	if limit < 1 || limit > 500 {
		limit = 50
	}
	return (page - 1) * limit, limit
}
