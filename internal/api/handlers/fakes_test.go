package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/application"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/contracts"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/infrastructure/cache"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/contracts/openapi"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/metrics"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/middleware"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/mongodb"
)

type fakeOrderRepo struct {
	saveFn     func(context.Context, *domain.PurchaseOrder) error
	findByIDFn func(context.Context, string) (*domain.PurchaseOrder, error)
	listFn     func(context.Context, domain.DocumentFilter, domain.Pagination) ([]*domain.PurchaseOrder, error)
	countFn    func(context.Context, domain.DocumentFilter) (int64, error)
}

func (f *fakeOrderRepo) Save(ctx context.Context, po *domain.PurchaseOrder) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, po)
	}
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, purchaseOrderID string) (*domain.PurchaseOrder, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, purchaseOrderID)
	}
	return nil, nil
}

func (f *fakeOrderRepo) List(ctx context.Context, filter domain.DocumentFilter, pagination domain.Pagination) ([]*domain.PurchaseOrder, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter, pagination)
	}
	return nil, nil
}

func (f *fakeOrderRepo) Count(ctx context.Context, filter domain.DocumentFilter) (int64, error) {
	if f.countFn != nil {
		return f.countFn(ctx, filter)
	}
	return 0, nil
}

type fakeStockInRepo struct {
	saveFn          func(context.Context, *domain.StockIn) error
	findByIDFn      func(context.Context, string) (*domain.StockIn, error)
	findByOrderIDFn func(context.Context, string) ([]*domain.StockIn, error)
	listFn          func(context.Context, domain.DocumentFilter, domain.Pagination) ([]*domain.StockIn, error)
}

func (f *fakeStockInRepo) Save(ctx context.Context, si *domain.StockIn) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, si)
	}
	return nil
}

func (f *fakeStockInRepo) FindByID(ctx context.Context, stockInID string) (*domain.StockIn, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, stockInID)
	}
	return nil, nil
}

func (f *fakeStockInRepo) FindByPurchaseOrderID(ctx context.Context, purchaseOrderID string) ([]*domain.StockIn, error) {
	if f.findByOrderIDFn != nil {
		return f.findByOrderIDFn(ctx, purchaseOrderID)
	}
	return nil, nil
}

func (f *fakeStockInRepo) List(ctx context.Context, filter domain.DocumentFilter, pagination domain.Pagination) ([]*domain.StockIn, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter, pagination)
	}
	return nil, nil
}

func (f *fakeStockInRepo) Count(ctx context.Context, filter domain.DocumentFilter) (int64, error) {
	return 0, nil
}

type fakeReturnRepo struct {
	saveFn     func(context.Context, *domain.PurchaseReturn) error
	findByIDFn func(context.Context, string) (*domain.PurchaseReturn, error)
}

func (f *fakeReturnRepo) Save(ctx context.Context, pr *domain.PurchaseReturn) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, pr)
	}
	return nil
}

func (f *fakeReturnRepo) FindByID(ctx context.Context, returnID string) (*domain.PurchaseReturn, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, returnID)
	}
	return nil, nil
}

func (f *fakeReturnRepo) List(ctx context.Context, filter domain.DocumentFilter, pagination domain.Pagination) ([]*domain.PurchaseReturn, error) {
	return nil, nil
}

func (f *fakeReturnRepo) Count(ctx context.Context, filter domain.DocumentFilter) (int64, error) {
	return 0, nil
}

type fakeCatalogRepo struct {
	saveFn      func(context.Context, *domain.CatalogEntry) error
	findByIDFn  func(context.Context, domain.CatalogKind, string) (*domain.CatalogEntry, error)
	findByIDsFn func(context.Context, domain.CatalogKind, []string) ([]*domain.CatalogEntry, error)
	listFn      func(context.Context, domain.CatalogFilter, domain.Pagination) ([]*domain.CatalogEntry, error)
	countFn     func(context.Context, domain.CatalogFilter) (int64, error)
}

func (f *fakeCatalogRepo) Save(ctx context.Context, entry *domain.CatalogEntry) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, entry)
	}
	return nil
}

func (f *fakeCatalogRepo) FindByID(ctx context.Context, kind domain.CatalogKind, entryID string) (*domain.CatalogEntry, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, kind, entryID)
	}
	return nil, nil
}

func (f *fakeCatalogRepo) FindByIDs(ctx context.Context, kind domain.CatalogKind, entryIDs []string) ([]*domain.CatalogEntry, error) {
	if f.findByIDsFn != nil {
		return f.findByIDsFn(ctx, kind, entryIDs)
	}
	return nil, nil
}

func (f *fakeCatalogRepo) List(ctx context.Context, filter domain.CatalogFilter, pagination domain.Pagination) ([]*domain.CatalogEntry, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter, pagination)
	}
	return nil, nil
}

func (f *fakeCatalogRepo) Count(ctx context.Context, filter domain.CatalogFilter) (int64, error) {
	if f.countFn != nil {
		return f.countFn(ctx, filter)
	}
	return 0, nil
}

type repos struct {
	orders   *fakeOrderRepo
	stockIns *fakeStockInRepo
	returns  *fakeReturnRepo
	catalog  *fakeCatalogRepo
}

func newRepos() repos {
	return repos{
		orders:   &fakeOrderRepo{},
		stockIns: &fakeStockInRepo{},
		returns:  &fakeReturnRepo{},
		catalog:  &fakeCatalogRepo{},
	}
}

func testLogger() *logging.Logger {
	cfg := logging.DefaultConfig("handler-test")
	cfg.Level = logging.LevelError
	cfg.Output = io.Discard
	return logging.New(cfg)
}

// newRouter wires real services over the fake repositories
func newRouter(r repos) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.InitValidator()

	logger := testLogger()
	m := metrics.New(metrics.DefaultConfig("handler-test"))
	tx := mongodb.Passthrough

	router := gin.New()
	router.NoRoute(middleware.NoRoute())
	RegisterRoutes(router.Group("/api/v1"), Set{
		PurchaseOrders: NewPurchaseOrderHandler(
			application.NewPurchasingService(r.orders, r.stockIns, tx, logger, m), logger),
		StockIns: NewStockInHandler(
			application.NewReceivingService(r.stockIns, r.orders, tx, logger, m), logger),
		PurchaseReturns: NewPurchaseReturnHandler(
			application.NewReturnsService(r.returns, r.stockIns, tx, logger, m), logger),
		Catalogs: NewCatalogHandler(
			application.NewCatalogService(r.catalog, cache.NoopLabelCache{}, tx, logger, m), logger),
		Reconciliation: NewReconciliationHandler(application.NewReconciliationService(logger), logger),
	})
	return router
}

func makeRequest(router *gin.Engine, method, path string, body interface{}) (*http.Request, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return req, rec
}

var contractValidator *openapi.Validator

// assertContract checks the recorded response against the published OpenAPI document
func assertContract(t *testing.T, req *http.Request, rec *httptest.ResponseRecorder) {
	t.Helper()
	if contractValidator == nil {
		v, err := openapi.NewValidatorFromBytes(contracts.OpenAPI)
		require.NoError(t, err)
		contractValidator = v
	}
	require.NoError(t, contractValidator.ValidateResponse(context.Background(), req, rec.Result()))
}

// decodeData unmarshals the "data" member of a response
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func testDate() time.Time {
	return time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
}
