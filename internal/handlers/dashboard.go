package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/go-retail/httpx"
	"github.com/diewo77/go-retail/internal/reporting"
)

type DashboardHandler struct {
	reports *reporting.Service
	log     *zap.Logger
}

func NewDashboardHandler(reports *reporting.Service, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{reports: reports, log: log}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reports.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// Health reports whether the database answers within two seconds.
func Health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "database_unavailable", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
