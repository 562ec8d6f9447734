package domain

import (
	"context"
	"time"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// Save persists a purchase order (upsert) together with its pending domain events
	Save(ctx context.Context, po *PurchaseOrder) error

	// FindByID retrieves an order by its PurchaseOrderID, nil when it does not exist
	FindByID(ctx context.Context, purchaseOrderID string) (*PurchaseOrder, error)

	// List retrieves orders matching the filter, newest first
	List(ctx context.Context, filter DocumentFilter, pagination Pagination) ([]*PurchaseOrder, error)

	// Count returns the total number of orders matching the filter
	Count(ctx context.Context, filter DocumentFilter) (int64, error)
}

// StockInRepository defines the interface for goods receipt persistence
type StockInRepository interface {
	// Save persists a stock-in (upsert) together with its pending domain events
	Save(ctx context.Context, si *StockIn) error

	// FindByID retrieves a stock-in by its StockInID, nil when it does not exist
	FindByID(ctx context.Context, stockInID string) (*StockIn, error)

	// FindByPurchaseOrderID retrieves every stock-in raised against an order
	FindByPurchaseOrderID(ctx context.Context, purchaseOrderID string) ([]*StockIn, error)

	// List retrieves stock-ins matching the filter, newest first
	List(ctx context.Context, filter DocumentFilter, pagination Pagination) ([]*StockIn, error)

	// Count returns the total number of stock-ins matching the filter
	Count(ctx context.Context, filter DocumentFilter) (int64, error)
}

// PurchaseReturnRepository defines the interface for purchase return persistence
type PurchaseReturnRepository interface {
	// Save persists a return (upsert) together with its pending domain events
	Save(ctx context.Context, pr *PurchaseReturn) error

	// FindByID retrieves a return by its ReturnID, nil when it does not exist
	FindByID(ctx context.Context, returnID string) (*PurchaseReturn, error)

	// List retrieves returns matching the filter, newest first
	List(ctx context.Context, filter DocumentFilter, pagination Pagination) ([]*PurchaseReturn, error)

	// Count returns the total number of returns matching the filter
	Count(ctx context.Context, filter DocumentFilter) (int64, error)
}

// CatalogRepository defines the interface for reference catalog persistence
type CatalogRepository interface {
	// Save persists an entry (upsert) together with its pending domain events
	Save(ctx context.Context, entry *CatalogEntry) error

	// FindByID retrieves an entry of a kind, nil when it does not exist
	FindByID(ctx context.Context, kind CatalogKind, entryID string) (*CatalogEntry, error)

	// FindByIDs retrieves the entries of a kind with the given ids; missing ids are skipped
	FindByIDs(ctx context.Context, kind CatalogKind, entryIDs []string) ([]*CatalogEntry, error)

	// List retrieves entries matching the filter ordered by label
	List(ctx context.Context, filter CatalogFilter, pagination Pagination) ([]*CatalogEntry, error)

	// Count returns the total number of entries matching the filter
	Count(ctx context.Context, filter CatalogFilter) (int64, error)
}

// Pagination represents pagination options
type Pagination struct {
	Page     int64
	PageSize int64
}

// DefaultPagination returns default pagination options
func DefaultPagination() Pagination {
	return Pagination{
		Page:     1,
		PageSize: 20,
	}
}

// Skip returns the number of documents to skip
func (p Pagination) Skip() int64 {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of documents to return
func (p Pagination) Limit() int64 {
	return p.PageSize
}

// TotalPages returns the page count for total documents
func (p Pagination) TotalPages(total int64) int64 {
	if p.PageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// DocumentFilter represents filter options for querying orders, receipts and returns.
// Status is compared as a string so one filter serves every document status type.
type DocumentFilter struct {
	Status          *string
	PartyRef        *string
	BranchRef       *string
	PurchaseOrderID *string
	StockInID       *string
	FromDate        *time.Time
	ToDate          *time.Time
}

// CatalogFilter represents filter options for querying catalog entries
type CatalogFilter struct {
	Kind       CatalogKind
	ActiveOnly bool
	Search     string
}
