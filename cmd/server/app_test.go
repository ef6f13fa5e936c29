package main

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/diewo77/go-retail/auth"
	"github.com/diewo77/go-retail/internal/config"
	"github.com/diewo77/go-retail/internal/dbtest"
	"github.com/diewo77/go-retail/internal/events"
	"github.com/diewo77/go-retail/internal/models"
	"github.com/diewo77/go-retail/internal/policy"
)

type appFixture struct {
	app     *App
	db      *gorm.DB
	signer  *auth.Signer
	seller  models.User
	manager models.User
	client  models.Client
	product models.Product
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	gdb := dbtest.New(t)
	log := zaptest.NewLogger(t)
	cfg := &config.Config{
		App:     config.AppConfig{AllowNegativeStock: true, ArtifactDir: t.TempDir()},
		Invoice: config.InvoiceConfig{Lang: "fr"},
	}
	svc, err := newServices(cfg, gdb, events.NewLogPublisher(zap.NewNop()), log)
	require.NoError(t, err)

	f := &appFixture{
		db:      gdb,
		signer:  auth.NewSigner("test-secret"),
		seller:  models.User{Username: "vendeur", Role: models.RoleSeller, IsActive: true},
		manager: models.User{Username: "manager", Role: models.RoleManager, IsActive: true},
		client:  models.Client{FirstName: "Jeanne", LastName: "Martin", IsActive: true},
		product: models.Product{Reference: "VEL-1", Name: "Vélo", Type: models.ProductTypeBike,
			PriceExclTax: decimal.NewFromInt(100), PriceInclTax: decimal.NewFromInt(120), TaxRate: decimal.NewFromInt(20),
			StockGarches: 3, IsActive: true, IsVisible: true},
	}
	require.NoError(t, gdb.Create(&f.seller).Error)
	require.NoError(t, gdb.Create(&f.manager).Error)
	require.NoError(t, gdb.Create(&f.client).Error)
	require.NoError(t, gdb.Create(&f.product).Error)
	f.app = NewApp(gdb, f.signer, policy.NewGate(gdb, time.Minute), svc, log)
	return f
}

func (f *appFixture) do(method, path, body string, user *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+f.signer.Token(user.ID))
	}
	rr := httptest.NewRecorder()
	f.app.ServeHTTP(rr, req)
	return rr
}

func TestHealthIsPublic(t *testing.T) {
	f := newAppFixture(t)
	rr := f.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	f := newAppFixture(t)
	rr := f.do(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rr.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+auth.NewSigner("other").Token(f.seller.ID))
	rr = httptest.NewRecorder()
	f.app.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestInactiveUserRejected(t *testing.T) {
	f := newAppFixture(t)
	require.NoError(t, f.db.Model(&f.seller).Update("is_active", false).Error)
	rr := f.do(http.MethodGet, "/api/products", "", &f.seller)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestReactivatedUserGetsCurrentRole(t *testing.T) {
	f := newAppFixture(t)
	path := "/api/products/" + strconv.Itoa(int(f.product.ID)) + "/stock"

	rr := f.do(http.MethodPost, path, `{"store":"garches","delta":1}`, &f.seller)
	require.Equal(t, http.StatusForbidden, rr.Code)

	require.NoError(t, f.db.Model(&f.seller).Updates(map[string]any{"role": models.RoleManager, "is_active": false}).Error)
	rr = f.do(http.MethodPost, path, `{"store":"garches","delta":1}`, &f.seller)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	require.NoError(t, f.db.Model(&f.seller).Update("is_active", true).Error)
	rr = f.do(http.MethodPost, path, `{"store":"garches","delta":1}`, &f.seller)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestRolePermissions(t *testing.T) {
	f := newAppFixture(t)
	body := `{"client_id":` + strconv.Itoa(int(f.client.ID)) + `,"store":"garches","items":[{"product_id":` +
		strconv.Itoa(int(f.product.ID)) + `,"quantity":1}]}`

	rr := f.do(http.MethodPost, "/api/orders", body, &f.seller)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = f.do(http.MethodGet, "/api/analytics/dashboard", "", &f.seller)
	assert.Equal(t, http.StatusOK, rr.Code)

	path := "/api/products/" + strconv.Itoa(int(f.product.ID)) + "/stock"
	rr = f.do(http.MethodPost, path, `{"store":"garches","delta":5}`, &f.seller)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(http.MethodPost, path, `{"store":"garches","delta":5}`, &f.manager)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"stock_garches":7`)

	rr = f.do(http.MethodGet, "/api/invoices", "", &f.seller)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUnknownRoute(t *testing.T) {
	f := newAppFixture(t)
	rr := f.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"not_found"}`, rr.Body.String())
}
