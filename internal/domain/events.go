package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
)

// DomainEvent represents a domain event interface
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// Event types
const (
	EventPurchaseOrderCreated        = "purchasing.order.created"
	EventPurchaseOrderConfirmed      = "purchasing.order.confirmed"
	EventPurchaseOrderReceiptApplied = "purchasing.order.receipt-applied"
	EventPurchaseOrderCancelled      = "purchasing.order.cancelled"
	EventStockInCreated              = "receiving.stock-in.created"
	EventStockInPosted               = "receiving.stock-in.posted"
	EventStockInCancelled            = "receiving.stock-in.cancelled"
	EventPurchaseReturnCreated       = "returns.purchase-return.created"
	EventPurchaseReturnPosted        = "returns.purchase-return.posted"
	EventPurchaseReturnCancelled     = "returns.purchase-return.cancelled"
	EventCatalogEntryUpserted        = "catalog.entry.upserted"
)

// AllEventTypes lists every event type the service emits
func AllEventTypes() []string {
	return []string{
		EventPurchaseOrderCreated,
		EventPurchaseOrderConfirmed,
		EventPurchaseOrderReceiptApplied,
		EventPurchaseOrderCancelled,
		EventStockInCreated,
		EventStockInPosted,
		EventStockInCancelled,
		EventPurchaseReturnCreated,
		EventPurchaseReturnPosted,
		EventPurchaseReturnCancelled,
		EventCatalogEntryUpserted,
	}
}

// PostedLine is a fulfilled line carried on posting events
type PostedLine struct {
	Ref          string                      `json:"ref"`
	TrackingMode reconciliation.TrackingMode `json:"trackingMode"`
	UnitRef      string                      `json:"unitRef"`
	Amount       decimal.Decimal             `json:"amount"`
	UnitCost     decimal.Decimal             `json:"unitCost"`
	LineTotal    decimal.Decimal             `json:"lineTotal"`
}

func postedLines(items []reconciliation.LineItem) []PostedLine {
	lines := make([]PostedLine, 0, len(items))
	for _, item := range items {
		amount := reconciliation.ActiveAmount(item)
		if !reconciliation.Aggregated(item) || !amount.IsPositive() {
			continue
		}
		lines = append(lines, PostedLine{
			Ref:          item.Ref,
			TrackingMode: item.TrackingMode,
			UnitRef:      item.UnitRef,
			Amount:       amount,
			UnitCost:     item.UnitCost,
			LineTotal:    reconciliation.LineTotal(item),
		})
	}
	return lines
}

// PurchaseOrderCreatedEvent is emitted when a purchase order is drafted
type PurchaseOrderCreatedEvent struct {
	PurchaseOrderID string          `json:"purchaseOrderId"`
	OrderNumber     string          `json:"orderNumber"`
	PartyRef        string          `json:"partyRef"`
	BranchRef       string          `json:"branchRef,omitempty"`
	LineCount       int             `json:"lineCount"`
	TotalOrdered    decimal.Decimal `json:"totalOrdered"`
	OccurredAt_     time.Time       `json:"occurredAt"`
}

func (e *PurchaseOrderCreatedEvent) EventType() string     { return EventPurchaseOrderCreated }
func (e *PurchaseOrderCreatedEvent) OccurredAt() time.Time { return e.OccurredAt_ }

// PurchaseOrderConfirmedEvent is emitted when a purchase order is opened for receiving
type PurchaseOrderConfirmedEvent struct {
	PurchaseOrderID string    `json:"purchaseOrderId"`
	OrderNumber     string    `json:"orderNumber"`
	ConfirmedAt     time.Time `json:"confirmedAt"`
}

func (e *PurchaseOrderConfirmedEvent) EventType() string     { return EventPurchaseOrderConfirmed }
func (e *PurchaseOrderConfirmedEvent) OccurredAt() time.Time { return e.ConfirmedAt }

// PurchaseOrderReceiptAppliedEvent is emitted when a posted stock-in is applied to its order
type PurchaseOrderReceiptAppliedEvent struct {
	PurchaseOrderID string                 `json:"purchaseOrderId"`
	StockInID       string                 `json:"stockInId"`
	Status          string                 `json:"status"`
	Summary         reconciliation.Summary `json:"summary"`
	OccurredAt_     time.Time              `json:"occurredAt"`
}

func (e *PurchaseOrderReceiptAppliedEvent) EventType() string     { return EventPurchaseOrderReceiptApplied }
func (e *PurchaseOrderReceiptAppliedEvent) OccurredAt() time.Time { return e.OccurredAt_ }

// PurchaseOrderCancelledEvent is emitted when a purchase order is cancelled
type PurchaseOrderCancelledEvent struct {
	PurchaseOrderID string    `json:"purchaseOrderId"`
	Reason          string    `json:"reason,omitempty"`
	CancelledAt     time.Time `json:"cancelledAt"`
}

func (e *PurchaseOrderCancelledEvent) EventType() string     { return EventPurchaseOrderCancelled }
func (e *PurchaseOrderCancelledEvent) OccurredAt() time.Time { return e.CancelledAt }

// StockInCreatedEvent is emitted when a goods receipt is drafted
type StockInCreatedEvent struct {
	StockInID       string    `json:"stockInId"`
	GRNNumber       string    `json:"grnNumber"`
	PurchaseOrderID string    `json:"purchaseOrderId,omitempty"`
	PartyRef        string    `json:"partyRef"`
	BranchRef       string    `json:"branchRef,omitempty"`
	LineCount       int       `json:"lineCount"`
	OccurredAt_     time.Time `json:"occurredAt"`
}

func (e *StockInCreatedEvent) EventType() string     { return EventStockInCreated }
func (e *StockInCreatedEvent) OccurredAt() time.Time { return e.OccurredAt_ }

// StockInPostedEvent is emitted when a goods receipt is posted
type StockInPostedEvent struct {
	StockInID       string                 `json:"stockInId"`
	GRNNumber       string                 `json:"grnNumber"`
	PurchaseOrderID string                 `json:"purchaseOrderId,omitempty"`
	PartyRef        string                 `json:"partyRef"`
	BranchRef       string                 `json:"branchRef,omitempty"`
	Summary         reconciliation.Summary `json:"summary"`
	GrandTotal      decimal.Decimal        `json:"grandTotal"`
	OverReceived    []string               `json:"overReceived"`
	Lines           []PostedLine           `json:"lines"`
	PostedAt        time.Time              `json:"postedAt"`
}

func (e *StockInPostedEvent) EventType() string     { return EventStockInPosted }
func (e *StockInPostedEvent) OccurredAt() time.Time { return e.PostedAt }

// StockInCancelledEvent is emitted when a draft goods receipt is cancelled
type StockInCancelledEvent struct {
	StockInID   string    `json:"stockInId"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelledAt"`
}

func (e *StockInCancelledEvent) EventType() string     { return EventStockInCancelled }
func (e *StockInCancelledEvent) OccurredAt() time.Time { return e.CancelledAt }

// PurchaseReturnCreatedEvent is emitted when a return is drafted against a goods receipt
type PurchaseReturnCreatedEvent struct {
	ReturnID     string    `json:"returnId"`
	ReturnNumber string    `json:"returnNumber"`
	StockInID    string    `json:"stockInId"`
	PartyRef     string    `json:"partyRef"`
	LineCount    int       `json:"lineCount"`
	OccurredAt_  time.Time `json:"occurredAt"`
}

func (e *PurchaseReturnCreatedEvent) EventType() string     { return EventPurchaseReturnCreated }
func (e *PurchaseReturnCreatedEvent) OccurredAt() time.Time { return e.OccurredAt_ }

// PurchaseReturnPostedEvent is emitted when a return is posted
type PurchaseReturnPostedEvent struct {
	ReturnID     string                 `json:"returnId"`
	ReturnNumber string                 `json:"returnNumber"`
	StockInID    string                 `json:"stockInId"`
	PartyRef     string                 `json:"partyRef"`
	Reason       string                 `json:"reason,omitempty"`
	Summary      reconciliation.Summary `json:"summary"`
	GrandTotal   decimal.Decimal        `json:"grandTotal"`
	Lines        []PostedLine           `json:"lines"`
	PostedAt     time.Time              `json:"postedAt"`
}

func (e *PurchaseReturnPostedEvent) EventType() string     { return EventPurchaseReturnPosted }
func (e *PurchaseReturnPostedEvent) OccurredAt() time.Time { return e.PostedAt }

// PurchaseReturnCancelledEvent is emitted when a draft return is cancelled
type PurchaseReturnCancelledEvent struct {
	ReturnID    string    `json:"returnId"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelledAt"`
}

func (e *PurchaseReturnCancelledEvent) EventType() string     { return EventPurchaseReturnCancelled }
func (e *PurchaseReturnCancelledEvent) OccurredAt() time.Time { return e.CancelledAt }

// CatalogEntryUpsertedEvent is emitted whenever a catalog entry is created or changed
type CatalogEntryUpsertedEvent struct {
	Kind        CatalogKind `json:"kind"`
	EntryID     string      `json:"entryId"`
	Code        string      `json:"code,omitempty"`
	Label       string      `json:"label"`
	Active      bool        `json:"active"`
	OccurredAt_ time.Time   `json:"occurredAt"`
}

func (e *CatalogEntryUpsertedEvent) EventType() string     { return EventCatalogEntryUpserted }
func (e *CatalogEntryUpsertedEvent) OccurredAt() time.Time { return e.OccurredAt_ }
