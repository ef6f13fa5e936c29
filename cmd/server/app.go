package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/go-retail/auth"
	"github.com/diewo77/go-retail/httpx"
	"github.com/diewo77/go-retail/internal/handlers"
	"github.com/diewo77/go-retail/internal/models"
	"github.com/diewo77/go-retail/internal/policy"
)

// App is the HTTP application: routing, authentication and permission checks.
type App struct {
	router *mux.Router
	db     *gorm.DB
	signer *auth.Signer
	gate   *policy.Gate
	log    *zap.Logger

	products  *handlers.ProductHandler
	clients   *handlers.ClientHandler
	orders    *handlers.OrderHandler
	invoices  *handlers.InvoiceHandler
	dashboard *handlers.DashboardHandler
}

// Services groups the handlers mounted under /api.
type Services struct {
	Products  *handlers.ProductHandler
	Clients   *handlers.ClientHandler
	Orders    *handlers.OrderHandler
	Invoices  *handlers.InvoiceHandler
	Dashboard *handlers.DashboardHandler
}

func NewApp(db *gorm.DB, signer *auth.Signer, gate *policy.Gate, svc Services, log *zap.Logger) *App {
	a := &App{
		router:    mux.NewRouter(),
		db:        db,
		signer:    signer,
		gate:      gate,
		log:       log,
		products:  svc.Products,
		clients:   svc.Clients,
		orders:    svc.Orders,
		invoices:  svc.Invoices,
		dashboard: svc.Dashboard,
	}
	a.setupRoutes()
	return a
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	withLogging(a.log, a.signer.Middleware(a.router)).ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	a.router.HandleFunc("/healthz", handlers.Health(a.db)).Methods(http.MethodGet)
	a.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	})

	api := a.router.PathPrefix("/api").Subrouter()
	api.Use(auth.RequireAuth(a.activeUser))

	ph, ch, oh, ih := a.products, a.clients, a.orders, a.invoices
	a.route(api, "/products", http.MethodGet, policy.ResourceProduct, policy.ActionList, ph.List)
	a.route(api, "/products", http.MethodPost, policy.ResourceProduct, policy.ActionCreate, ph.Create)
	a.route(api, "/products/lookup", http.MethodGet, policy.ResourceProduct, policy.ActionView, ph.ByBarcode)
	a.route(api, "/products/{id:[0-9]+}", http.MethodGet, policy.ResourceProduct, policy.ActionView, ph.View)
	a.route(api, "/products/{id:[0-9]+}", http.MethodPut, policy.ResourceProduct, policy.ActionUpdate, ph.Update)
	a.route(api, "/products/{id:[0-9]+}", http.MethodDelete, policy.ResourceProduct, policy.ActionDelete, ph.Delete)
	a.route(api, "/products/{id:[0-9]+}/stock", http.MethodPost, policy.ResourceStock, policy.ActionUpdate, ph.AdjustStock)
	a.route(api, "/products/{id:[0-9]+}/movements", http.MethodGet, policy.ResourceStock, policy.ActionList, ph.Movements)
	a.route(api, "/categories", http.MethodGet, policy.ResourceCategory, policy.ActionList, ph.ListCategories)
	a.route(api, "/categories", http.MethodPost, policy.ResourceCategory, policy.ActionCreate, ph.CreateCategory)

	a.route(api, "/clients", http.MethodGet, policy.ResourceClient, policy.ActionList, ch.List)
	a.route(api, "/clients", http.MethodPost, policy.ResourceClient, policy.ActionCreate, ch.Create)
	a.route(api, "/clients/{id:[0-9]+}", http.MethodGet, policy.ResourceClient, policy.ActionView, ch.View)
	a.route(api, "/clients/{id:[0-9]+}", http.MethodPut, policy.ResourceClient, policy.ActionUpdate, ch.Update)
	a.route(api, "/clients/{id:[0-9]+}", http.MethodDelete, policy.ResourceClient, policy.ActionDelete, ch.Delete)

	a.route(api, "/orders", http.MethodGet, policy.ResourceOrder, policy.ActionList, oh.List)
	a.route(api, "/orders", http.MethodPost, policy.ResourceOrder, policy.ActionCreate, oh.Place)
	a.route(api, "/orders/{id:[0-9]+}", http.MethodGet, policy.ResourceOrder, policy.ActionView, oh.View)
	a.route(api, "/orders/{id:[0-9]+}", http.MethodDelete, policy.ResourceOrder, policy.ActionDelete, oh.Delete)
	a.route(api, "/orders/{id:[0-9]+}/invoice", http.MethodPost, policy.ResourceInvoice, policy.ActionRender, ih.RenderForOrder)

	a.route(api, "/invoices", http.MethodGet, policy.ResourceInvoice, policy.ActionList, ih.List)
	a.route(api, "/invoices/{id:[0-9]+}", http.MethodGet, policy.ResourceInvoice, policy.ActionView, ih.View)
	a.route(api, "/invoices/{id:[0-9]+}", http.MethodDelete, policy.ResourceInvoice, policy.ActionDelete, ih.Delete)
	a.route(api, "/invoices/{id:[0-9]+}/render", http.MethodPost, policy.ResourceInvoice, policy.ActionRender, ih.Render)
	a.route(api, "/invoices/{id:[0-9]+}/pdf", http.MethodGet, policy.ResourceInvoice, policy.ActionView, ih.Download)
	a.route(api, "/invoices/{id:[0-9]+}/paid", http.MethodPost, policy.ResourceInvoice, policy.ActionPay, ih.MarkPaid)

	a.route(api, "/analytics/dashboard", http.MethodGet, policy.ResourceDashboard, policy.ActionView, a.dashboard.Dashboard)
}

func (a *App) route(r *mux.Router, path, method, resource string, action policy.Action, h http.HandlerFunc) {
	r.Handle(path, a.gate.RequirePermission(resource, action)(h)).Methods(method)
}

// activeUser rejects tokens of users that were removed or deactivated and
// drops their cached permissions.
func (a *App) activeUser(ctx context.Context, uid uint) bool {
	var count int64
	err := a.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_active = ?", uid, true).Count(&count).Error
	if err != nil {
		return false
	}
	if count == 0 {
		a.gate.InvalidateUser(uid)
		return false
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging logs one line per request.
func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
