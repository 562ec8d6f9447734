package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
)

// Document types used in logs and metrics
const (
	DocumentPurchaseOrder  = "purchase_order"
	DocumentStockIn        = "stock_in"
	DocumentPurchaseReturn = "purchase_return"
)

// Posting outcomes recorded on the documents posted counter
const (
	OutcomePosted    = "posted"
	OutcomeBlocked   = "blocked"
	OutcomeRejected  = "rejected"
	OutcomeCancelled = "cancelled"
	OutcomeReceived  = "received"
)

// CreatePurchaseOrderCommand represents a command to draft a purchase order
type CreatePurchaseOrderCommand struct {
	Header   domain.DocumentHeader
	Lines    []domain.OrderLine
	Activate bool
}

// UpdateHeaderCommand replaces the header of a draft document
type UpdateHeaderCommand struct {
	DocumentID         string
	Header             domain.DocumentHeader
	SupplierInvoiceRef string
	Reason             string
}

// CancelDocumentCommand cancels a document
type CancelDocumentCommand struct {
	DocumentID string
	Reason     string
}

// CreateStockInCommand drafts a GRN. Without a PurchaseOrderID the GRN is manual and
// ManualLines seed it.
type CreateStockInCommand struct {
	PurchaseOrderID    string
	Header             domain.DocumentHeader
	SupplierInvoiceRef string
	ManualLines        []ManualLine
}

// ManualLine is a line of a manual GRN
type ManualLine struct {
	Ref          string
	Description  string
	TrackingMode reconciliation.TrackingMode
	UnitRef      string
	UnitCost     decimal.Decimal
}

// UpdateLineCommand applies discrete changes to one line of a draft GRN or return.
// Nil fields are left alone; Clear zeroes the amounts before the other changes apply.
type UpdateLineCommand struct {
	DocumentID string
	Ref        string
	Clear      bool
	Remove     bool
	Count      *decimal.Decimal
	Weight     *decimal.Decimal
	UnitCost   *decimal.Decimal
	UnitRef    *string
}

// CreatePurchaseReturnCommand drafts a return against a posted GRN
type CreatePurchaseReturnCommand struct {
	StockInID string
	Header    domain.DocumentHeader
	Reason    string
}

// UpsertCatalogEntryCommand creates an entry when EntryID is empty, otherwise updates it
type UpsertCatalogEntryCommand struct {
	Kind         domain.CatalogKind
	EntryID      string
	Code         string
	Label        string
	TrackingMode reconciliation.TrackingMode
	Attributes   map[string]string
}

// ListDocumentsQuery lists orders, receipts or returns
type ListDocumentsQuery struct {
	Filter     domain.DocumentFilter
	Pagination domain.Pagination
}

// ListCatalogQuery lists catalog entries of one kind
type ListCatalogQuery struct {
	Filter     domain.CatalogFilter
	Pagination domain.Pagination
}

// PreviewCommand is an unsaved reconciliation request from the entry form
type PreviewCommand struct {
	Items []reconciliation.LineItem
	Prior reconciliation.Fulfillments
	// IgnoreBaseline drops EXCEEDS_ORDERED, as for a manual GRN
	IgnoreBaseline bool
}

// Page is one page of a list query
type Page[T any] struct {
	Items      []T
	TotalItems int64
	Pagination domain.Pagination
}

// TotalPages returns the page count
func (p Page[T]) TotalPages() int64 {
	return p.Pagination.TotalPages(p.TotalItems)
}

// OrderReconciliation is the "purchase received" view of an order
type OrderReconciliation struct {
	PurchaseOrderID string
	OrderNumber     string
	Status          domain.PurchaseOrderStatus
	Lines           []OrderLineProgress
	Summary         reconciliation.Summary
	StockIns        []StockInRef
	GeneratedAt     time.Time
}

// OrderLineProgress is one order line with its received progress
type OrderLineProgress struct {
	Ref           string
	Description   string
	TrackingMode  reconciliation.TrackingMode
	UnitRef       string
	Ordered       decimal.Decimal
	Received      decimal.Decimal
	Remaining     decimal.Decimal
	CompletionPct decimal.Decimal
}

// StockInRef identifies a GRN raised against an order
type StockInRef struct {
	StockInID string
	GRNNumber string
	Status    domain.PostingStatus
	PostedAt  *time.Time
}
