package dto

import (
	"strings"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/application"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
)

// HeaderRequest represents the header of an order, receipt or return
type HeaderRequest struct {
	DocumentDate Date   `json:"documentDate"`
	ExpectedDate *Date  `json:"expectedDate,omitempty"`
	PartyRef     string `json:"partyRef" binding:"omitempty,doc_ref"`
	BranchRef    string `json:"branchRef,omitempty" binding:"omitempty,doc_ref"`
	Remarks      string `json:"remarks,omitempty" binding:"max=500,safe_string"`
}

// ToDomain converts the request to a domain header
func (r HeaderRequest) ToDomain() domain.DocumentHeader {
	return domain.DocumentHeader{
		DocumentDate: r.DocumentDate.Time,
		ExpectedDate: r.ExpectedDate.Ptr(),
		PartyRef:     strings.TrimSpace(r.PartyRef),
		BranchRef:    strings.TrimSpace(r.BranchRef),
		Remarks:      strings.TrimSpace(r.Remarks),
	}
}

// OrderLineRequest represents one purchase order line
type OrderLineRequest struct {
	Ref          string `json:"ref" binding:"required,doc_ref"`
	Description  string `json:"description,omitempty" binding:"max=200,safe_string"`
	TrackingMode string `json:"trackingMode" binding:"required,tracking_mode"`
	UnitRef      string `json:"unitRef" binding:"required,doc_ref"`
	Ordered      Amount `json:"ordered"`
	UnitCost     Amount `json:"unitCost"`
}

// CreatePurchaseOrderRequest represents the request to draft a purchase order
type CreatePurchaseOrderRequest struct {
	Header   HeaderRequest      `json:"header"`
	Lines    []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
	Activate bool               `json:"activate"`
}

// ToCommand converts the request to an application command
func (r CreatePurchaseOrderRequest) ToCommand() application.CreatePurchaseOrderCommand {
	lines := make([]domain.OrderLine, len(r.Lines))
	for i, line := range r.Lines {
		lines[i] = domain.OrderLine{
			Ref:          line.Ref,
			Description:  strings.TrimSpace(line.Description),
			TrackingMode: reconciliation.ParseTrackingMode(line.TrackingMode),
			UnitRef:      line.UnitRef,
			Ordered:      line.Ordered.Decimal,
			UnitCost:     line.UnitCost.Decimal,
		}
	}
	return application.CreatePurchaseOrderCommand{
		Header:   r.Header.ToDomain(),
		Lines:    lines,
		Activate: r.Activate,
	}
}

// UpdateHeaderRequest represents a header edit on a draft document
type UpdateHeaderRequest struct {
	Header             HeaderRequest `json:"header"`
	SupplierInvoiceRef string        `json:"supplierInvoiceRef,omitempty" binding:"omitempty,doc_ref"`
	Reason             string        `json:"reason,omitempty" binding:"max=500,safe_string"`
}

// ToCommand converts the request to an application command
func (r UpdateHeaderRequest) ToCommand(documentID string) application.UpdateHeaderCommand {
	return application.UpdateHeaderCommand{
		DocumentID:         documentID,
		Header:             r.Header.ToDomain(),
		SupplierInvoiceRef: r.SupplierInvoiceRef,
		Reason:             strings.TrimSpace(r.Reason),
	}
}

// CancelRequest represents the request to cancel a document
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500,safe_string"`
}

// ManualLineRequest represents a line of a manual stock-in
type ManualLineRequest struct {
	Ref          string `json:"ref" binding:"required,doc_ref"`
	Description  string `json:"description,omitempty" binding:"max=200,safe_string"`
	TrackingMode string `json:"trackingMode" binding:"required,tracking_mode"`
	UnitRef      string `json:"unitRef,omitempty" binding:"omitempty,doc_ref"`
	UnitCost     Amount `json:"unitCost"`
}

// ToManualLine converts the request to an application manual line
func (r ManualLineRequest) ToManualLine() application.ManualLine {
	return application.ManualLine{
		Ref:          r.Ref,
		Description:  strings.TrimSpace(r.Description),
		TrackingMode: reconciliation.ParseTrackingMode(r.TrackingMode),
		UnitRef:      r.UnitRef,
		UnitCost:     r.UnitCost.Decimal,
	}
}

// CreateStockInRequest drafts a GRN. Without purchaseOrderId the GRN is manual.
type CreateStockInRequest struct {
	PurchaseOrderID    string              `json:"purchaseOrderId,omitempty" binding:"omitempty,doc_ref"`
	Header             HeaderRequest       `json:"header"`
	SupplierInvoiceRef string              `json:"supplierInvoiceRef,omitempty" binding:"omitempty,doc_ref"`
	Lines              []ManualLineRequest `json:"lines,omitempty" binding:"dive"`
}

// ToCommand converts the request to an application command
func (r CreateStockInRequest) ToCommand() application.CreateStockInCommand {
	lines := make([]application.ManualLine, len(r.Lines))
	for i, line := range r.Lines {
		lines[i] = line.ToManualLine()
	}
	return application.CreateStockInCommand{
		PurchaseOrderID:    r.PurchaseOrderID,
		Header:             r.Header.ToDomain(),
		SupplierInvoiceRef: r.SupplierInvoiceRef,
		ManualLines:        lines,
	}
}

// UpdateLineRequest applies discrete changes to one line. Absent fields are left alone.
type UpdateLineRequest struct {
	Clear    bool    `json:"clear"`
	Remove   bool    `json:"remove"`
	Count    *Amount `json:"count,omitempty"`
	Weight   *Amount `json:"weight,omitempty"`
	UnitCost *Amount `json:"unitCost,omitempty"`
	UnitRef  *string `json:"unitRef,omitempty" binding:"omitempty,doc_ref"`
}

// ToCommand converts the request to an application command
func (r UpdateLineRequest) ToCommand(documentID, ref string) application.UpdateLineCommand {
	return application.UpdateLineCommand{
		DocumentID: documentID,
		Ref:        ref,
		Clear:      r.Clear,
		Remove:     r.Remove,
		Count:      r.Count.Ptr(),
		Weight:     r.Weight.Ptr(),
		UnitCost:   r.UnitCost.Ptr(),
		UnitRef:    r.UnitRef,
	}
}

// CreatePurchaseReturnRequest drafts a return against a posted GRN
type CreatePurchaseReturnRequest struct {
	StockInID string        `json:"stockInId" binding:"required,doc_ref"`
	Header    HeaderRequest `json:"header"`
	Reason    string        `json:"reason,omitempty" binding:"max=500,safe_string"`
}

// ToCommand converts the request to an application command
func (r CreatePurchaseReturnRequest) ToCommand() application.CreatePurchaseReturnCommand {
	return application.CreatePurchaseReturnCommand{
		StockInID: r.StockInID,
		Header:    r.Header.ToDomain(),
		Reason:    strings.TrimSpace(r.Reason),
	}
}

// UpsertCatalogEntryRequest creates or updates a catalog entry
type UpsertCatalogEntryRequest struct {
	Code         string            `json:"code,omitempty" binding:"omitempty,doc_ref"`
	Label        string            `json:"label" binding:"required,max=120,safe_string"`
	TrackingMode string            `json:"trackingMode,omitempty" binding:"omitempty,tracking_mode"`
	Attributes   map[string]string `json:"attributes,omitempty" binding:"max=20"`
}

// ToCommand converts the request to an application command
func (r UpsertCatalogEntryRequest) ToCommand(kind domain.CatalogKind, entryID string) application.UpsertCatalogEntryCommand {
	return application.UpsertCatalogEntryCommand{
		Kind:         kind,
		EntryID:      entryID,
		Code:         r.Code,
		Label:        r.Label,
		TrackingMode: reconciliation.ParseTrackingMode(r.TrackingMode),
		Attributes:   r.Attributes,
	}
}

// ResolveLabelsRequest asks for the labels of catalog ids
type ResolveLabelsRequest struct {
	Kind string   `json:"kind" binding:"required,catalog_kind"`
	IDs  []string `json:"ids" binding:"required,max=500"`
}

// PreviewItemRequest is one line of an unsaved entry form. The tracking mode may still be
// unset while the user is typing.
type PreviewItemRequest struct {
	Ref          string `json:"ref"`
	TrackingMode string `json:"trackingMode"`
	UnitRef      string `json:"unitRef"`
	Ordered      Amount `json:"ordered"`
	Count        Amount `json:"count"`
	Weight       Amount `json:"weight"`
	UnitCost     Amount `json:"unitCost"`
}

// PreviewRequest represents the request to preview a reconciliation
type PreviewRequest struct {
	Items          []PreviewItemRequest `json:"items" binding:"max=1000"`
	Prior          map[string]Amount    `json:"prior,omitempty"`
	IgnoreBaseline bool                 `json:"ignoreBaseline"`
}

// ToCommand converts the request to an application command
func (r PreviewRequest) ToCommand() application.PreviewCommand {
	items := make([]reconciliation.LineItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = reconciliation.LineItem{
			Ref:          strings.TrimSpace(item.Ref),
			TrackingMode: reconciliation.ParseTrackingMode(item.TrackingMode),
			UnitRef:      item.UnitRef,
			Ordered:      item.Ordered.Decimal,
			Count:        item.Count.Decimal,
			Weight:       item.Weight.Decimal,
			UnitCost:     item.UnitCost.Decimal,
		}
	}

	prior := make(reconciliation.Fulfillments, len(r.Prior))
	for ref, amount := range r.Prior {
		prior[ref] = amount.Decimal
	}

	return application.PreviewCommand{
		Items:          items,
		Prior:          prior,
		IgnoreBaseline: r.IgnoreBaseline,
	}
}
