package application

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/metrics"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/mongodb"
)

var errStore = errors.New("store unavailable")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{Level: logging.LevelError, ServiceName: "test", Output: io.Discard})
}

func testHeader() domain.DocumentHeader {
	return domain.DocumentHeader{
		DocumentDate: time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		PartyRef:     "SUP-001",
		BranchRef:    "BR-MAIN",
	}
}

func testOrderLines() []domain.OrderLine {
	return []domain.OrderLine{
		{Ref: "R1", Description: "Gold ring", TrackingMode: reconciliation.ModeCount, UnitRef: "pcs", Ordered: dec("10"), UnitCost: dec("100")},
		{Ref: "R2", Description: "22k chain", TrackingMode: reconciliation.ModeWeight, UnitRef: "gm", Ordered: dec("25.5"), UnitCost: dec("6000")},
	}
}

// countingTx records how many units of work ran
type countingTx struct {
	runs int
}

func (t *countingTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.runs++
	return fn(ctx)
}

var _ mongodb.TxRunner = (*countingTx)(nil)

type orderRepo struct {
	mu      sync.Mutex
	orders  map[string]domain.PurchaseOrder
	saveErr error
	saves   int
}

func newOrderRepo() *orderRepo {
	return &orderRepo{orders: make(map[string]domain.PurchaseOrder)}
}

func (r *orderRepo) Save(_ context.Context, po *domain.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	c := *po
	c.Lines = append([]domain.OrderLine(nil), po.Lines...)
	c.DomainEvents = nil
	r.orders[po.PurchaseOrderID] = c
	r.saves++
	po.ClearDomainEvents()
	return nil
}

func (r *orderRepo) FindByID(_ context.Context, id string) (*domain.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	po.Lines = append([]domain.OrderLine(nil), po.Lines...)
	return &po, nil
}

func (r *orderRepo) List(_ context.Context, filter domain.DocumentFilter, p domain.Pagination) ([]*domain.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.PurchaseOrder, 0)
	for _, po := range r.orders {
		if filter.Status != nil && string(po.Status) != *filter.Status {
			continue
		}
		po := po
		out = append(out, &po)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return page(out, p), nil
}

func (r *orderRepo) Count(ctx context.Context, filter domain.DocumentFilter) (int64, error) {
	all, _ := r.List(ctx, filter, domain.Pagination{Page: 1, PageSize: 1000})
	return int64(len(all)), nil
}

type stockInRepo struct {
	mu       sync.Mutex
	stockIns map[string]domain.StockIn
	saveErr  error
}

func newStockInRepo() *stockInRepo {
	return &stockInRepo{stockIns: make(map[string]domain.StockIn)}
}

func (r *stockInRepo) Save(_ context.Context, si *domain.StockIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	c := *si
	c.Lines = append([]domain.StockInLine(nil), si.Lines...)
	c.DomainEvents = nil
	r.stockIns[si.StockInID] = c
	si.ClearDomainEvents()
	return nil
}

func (r *stockInRepo) FindByID(_ context.Context, id string) (*domain.StockIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	si, ok := r.stockIns[id]
	if !ok {
		return nil, nil
	}
	si.Lines = append([]domain.StockInLine(nil), si.Lines...)
	return &si, nil
}

func (r *stockInRepo) FindByPurchaseOrderID(_ context.Context, purchaseOrderID string) ([]*domain.StockIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.StockIn, 0)
	for _, si := range r.stockIns {
		if si.PurchaseOrderID == purchaseOrderID {
			si := si
			out = append(out, &si)
		}
	}
	return out, nil
}

func (r *stockInRepo) List(_ context.Context, filter domain.DocumentFilter, p domain.Pagination) ([]*domain.StockIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.StockIn, 0)
	for _, si := range r.stockIns {
		if filter.PurchaseOrderID != nil && si.PurchaseOrderID != *filter.PurchaseOrderID {
			continue
		}
		si := si
		out = append(out, &si)
	}
	return page(out, p), nil
}

func (r *stockInRepo) Count(ctx context.Context, filter domain.DocumentFilter) (int64, error) {
	all, _ := r.List(ctx, filter, domain.Pagination{Page: 1, PageSize: 1000})
	return int64(len(all)), nil
}

type returnRepo struct {
	mu      sync.Mutex
	returns map[string]domain.PurchaseReturn
}

func newReturnRepo() *returnRepo {
	return &returnRepo{returns: make(map[string]domain.PurchaseReturn)}
}

func (r *returnRepo) Save(_ context.Context, pr *domain.PurchaseReturn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *pr
	c.Lines = append([]domain.ReturnLine(nil), pr.Lines...)
	c.DomainEvents = nil
	r.returns[pr.ReturnID] = c
	pr.ClearDomainEvents()
	return nil
}

func (r *returnRepo) FindByID(_ context.Context, id string) (*domain.PurchaseReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pr, ok := r.returns[id]
	if !ok {
		return nil, nil
	}
	pr.Lines = append([]domain.ReturnLine(nil), pr.Lines...)
	return &pr, nil
}

func (r *returnRepo) List(_ context.Context, _ domain.DocumentFilter, p domain.Pagination) ([]*domain.PurchaseReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.PurchaseReturn, 0)
	for _, pr := range r.returns {
		pr := pr
		out = append(out, &pr)
	}
	return page(out, p), nil
}

func (r *returnRepo) Count(_ context.Context, _ domain.DocumentFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.returns)), nil
}

type catalogRepo struct {
	mu       sync.Mutex
	entries  map[string]domain.CatalogEntry
	findByID int
}

func newCatalogRepo() *catalogRepo {
	return &catalogRepo{entries: make(map[string]domain.CatalogEntry)}
}

func (r *catalogRepo) Save(_ context.Context, entry *domain.CatalogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *entry
	c.DomainEvents = nil
	r.entries[entry.EntryID] = c
	entry.ClearDomainEvents()
	return nil
}

func (r *catalogRepo) FindByID(_ context.Context, kind domain.CatalogKind, id string) (*domain.CatalogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || entry.Kind != kind {
		return nil, nil
	}
	return &entry, nil
}

func (r *catalogRepo) FindByIDs(_ context.Context, kind domain.CatalogKind, ids []string) ([]*domain.CatalogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findByID++
	out := make([]*domain.CatalogEntry, 0, len(ids))
	for _, id := range ids {
		if entry, ok := r.entries[id]; ok && entry.Kind == kind {
			entry := entry
			out = append(out, &entry)
		}
	}
	return out, nil
}

func (r *catalogRepo) List(_ context.Context, filter domain.CatalogFilter, p domain.Pagination) ([]*domain.CatalogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.CatalogEntry, 0)
	for _, entry := range r.entries {
		if entry.Kind != filter.Kind || (filter.ActiveOnly && !entry.Active) {
			continue
		}
		entry := entry
		out = append(out, &entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return page(out, p), nil
}

func (r *catalogRepo) Count(ctx context.Context, filter domain.CatalogFilter) (int64, error) {
	all, _ := r.List(ctx, filter, domain.Pagination{Page: 1, PageSize: 1000})
	return int64(len(all)), nil
}

func page[T any](items []T, p domain.Pagination) []T {
	start := p.Skip()
	if start >= int64(len(items)) {
		return []T{}
	}
	end := start + p.Limit()
	if p.Limit() <= 0 || end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[start:end]
}

type memoryCache struct {
	labels  map[string]string
	failGet bool
	failSet bool
	dropped []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{labels: make(map[string]string)}
}

func (c *memoryCache) GetLabels(_ context.Context, kind domain.CatalogKind, ids []string) (map[string]string, error) {
	if c.failGet {
		return nil, errStore
	}
	out := make(map[string]string)
	for _, id := range ids {
		if label, ok := c.labels[string(kind)+":"+id]; ok {
			out[id] = label
		}
	}
	return out, nil
}

func (c *memoryCache) SetLabels(_ context.Context, kind domain.CatalogKind, labels map[string]string) error {
	if c.failSet {
		return errStore
	}
	for id, label := range labels {
		c.labels[string(kind)+":"+id] = label
	}
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, kind domain.CatalogKind, ids ...string) error {
	for _, id := range ids {
		delete(c.labels, string(kind)+":"+id)
		c.dropped = append(c.dropped, id)
	}
	return nil
}

// fixture wires every service over the same in-memory stores
type fixture struct {
	tx       *countingTx
	orders   *orderRepo
	stockIns *stockInRepo
	returns  *returnRepo
	catalog  *catalogRepo
	cache    *memoryCache
	metrics  *metrics.Metrics

	purchasing *PurchasingService
	receiving  *ReceivingService
	returnsSvc *ReturnsService
	catalogSvc *CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tx:       &countingTx{},
		orders:   newOrderRepo(),
		stockIns: newStockInRepo(),
		returns:  newReturnRepo(),
		catalog:  newCatalogRepo(),
		cache:    newMemoryCache(),
		metrics:  metrics.New(metrics.DefaultConfig("test")),
	}
	logger := testLogger()
	f.purchasing = NewPurchasingService(f.orders, f.stockIns, f.tx, logger, f.metrics)
	f.receiving = NewReceivingService(f.stockIns, f.orders, f.tx, logger, f.metrics)
	f.returnsSvc = NewReturnsService(f.returns, f.stockIns, f.tx, logger, f.metrics)
	f.catalogSvc = NewCatalogService(f.catalog, f.cache, f.tx, logger, f.metrics)
	return f
}

func (f *fixture) openOrder(t *testing.T) *domain.PurchaseOrder {
	t.Helper()
	po, err := f.purchasing.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderCommand{
		Header:   testHeader(),
		Lines:    testOrderLines(),
		Activate: true,
	})
	require.NoError(t, err)
	return po
}

// postedStockIn receives 4 pieces of R1 and 10.25 gm of R2
func (f *fixture) postedStockIn(t *testing.T) *domain.StockIn {
	t.Helper()
	ctx := context.Background()
	po := f.openOrder(t)
	si, err := f.receiving.CreateStockIn(ctx, CreateStockInCommand{PurchaseOrderID: po.PurchaseOrderID, Header: testHeader()})
	require.NoError(t, err)
	_, err = f.receiving.UpdateStockInLine(ctx, UpdateLineCommand{DocumentID: si.StockInID, Ref: "R1", Count: decPtr("4")})
	require.NoError(t, err)
	_, err = f.receiving.UpdateStockInLine(ctx, UpdateLineCommand{DocumentID: si.StockInID, Ref: "R2", Weight: decPtr("10.25")})
	require.NoError(t, err)
	si, err = f.receiving.PostStockIn(ctx, si.StockInID)
	require.NoError(t, err)
	return si
}
