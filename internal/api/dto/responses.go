package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/application"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
)

// HeaderResponse represents a document header in responses
type HeaderResponse struct {
	DocumentDate Date   `json:"documentDate"`
	ExpectedDate *Date  `json:"expectedDate,omitempty"`
	PartyRef     string `json:"partyRef"`
	BranchRef    string `json:"branchRef,omitempty"`
	Remarks      string `json:"remarks,omitempty"`
}

// SummaryResponse represents ordered against fulfilled totals
type SummaryResponse struct {
	TotalOrdered   Amount `json:"totalOrdered"`
	TotalFulfilled Amount `json:"totalFulfilled"`
	Pending        Amount `json:"pending"`
	CompletionPct  Amount `json:"completionPct"`
}

// ValidationErrorResponse represents one line validation finding
type ValidationErrorResponse struct {
	Code     string `json:"code"`
	Field    string `json:"field"`
	Message  string `json:"message"`
	Blocking bool   `json:"blocking"`
}

// LineResultResponse represents one reconciled line
type LineResultResponse struct {
	Ref          string                    `json:"ref"`
	TrackingMode string                    `json:"trackingMode"`
	Active       Amount                    `json:"active"`
	Baseline     Amount                    `json:"baseline"`
	Outstanding  Amount                    `json:"outstanding"`
	LineTotal    Amount                    `json:"lineTotal"`
	Errors       []ValidationErrorResponse `json:"errors"`
}

// ReconciliationResponse represents the result of a reconciliation preview
type ReconciliationResponse struct {
	Lines      []LineResultResponse `json:"lines"`
	Summary    SummaryResponse      `json:"summary"`
	GrandTotal Amount               `json:"grandTotal"`
	Blocking   bool                 `json:"blocking"`
}

// OrderLineResponse represents a purchase order line in responses
type OrderLineResponse struct {
	Ref          string `json:"ref"`
	Description  string `json:"description,omitempty"`
	TrackingMode string `json:"trackingMode"`
	UnitRef      string `json:"unitRef"`
	Ordered      Amount `json:"ordered"`
	UnitCost     Amount `json:"unitCost"`
	Received     Amount `json:"received"`
	Remaining    Amount `json:"remaining"`
}

// PurchaseOrderResponse represents a purchase order in responses
type PurchaseOrderResponse struct {
	PurchaseOrderID string              `json:"purchaseOrderId"`
	OrderNumber     string              `json:"orderNumber"`
	Header          HeaderResponse      `json:"header"`
	Status          string              `json:"status"`
	Lines           []OrderLineResponse `json:"lines"`
	Summary         SummaryResponse     `json:"summary"`
	OrderValue      Amount              `json:"orderValue"`
	CancelReason    string              `json:"cancelReason,omitempty"`
	ConfirmedAt     *time.Time          `json:"confirmedAt,omitempty"`
	CompletedAt     *time.Time          `json:"completedAt,omitempty"`
	CancelledAt     *time.Time          `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// DocumentLineResponse represents a stock-in or return line with its live validation
type DocumentLineResponse struct {
	Ref          string                    `json:"ref"`
	Description  string                    `json:"description,omitempty"`
	TrackingMode string                    `json:"trackingMode"`
	UnitRef      string                    `json:"unitRef,omitempty"`
	Ordered      Amount                    `json:"ordered"`
	Count        Amount                    `json:"count"`
	Weight       Amount                    `json:"weight"`
	UnitCost     Amount                    `json:"unitCost"`
	LineTotal    Amount                    `json:"lineTotal"`
	Returned     *Amount                   `json:"returned,omitempty"`
	Errors       []ValidationErrorResponse `json:"errors"`
}

// StockInResponse represents a GRN in responses
type StockInResponse struct {
	StockInID          string                 `json:"stockInId"`
	GRNNumber          string                 `json:"grnNumber"`
	PurchaseOrderID    string                 `json:"purchaseOrderId,omitempty"`
	Manual             bool                   `json:"manual"`
	Header             HeaderResponse         `json:"header"`
	SupplierInvoiceRef string                 `json:"supplierInvoiceRef,omitempty"`
	Status             string                 `json:"status"`
	Lines              []DocumentLineResponse `json:"lines"`
	Summary            SummaryResponse        `json:"summary"`
	GrandTotal         Amount                 `json:"grandTotal"`
	Blocking           bool                   `json:"blocking"`
	OverReceived       []string               `json:"overReceived"`
	CancelReason       string                 `json:"cancelReason,omitempty"`
	PostedAt           *time.Time             `json:"postedAt,omitempty"`
	CancelledAt        *time.Time             `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

// PurchaseReturnResponse represents a purchase return in responses
type PurchaseReturnResponse struct {
	ReturnID     string                 `json:"returnId"`
	ReturnNumber string                 `json:"returnNumber"`
	StockInID    string                 `json:"stockInId"`
	Header       HeaderResponse         `json:"header"`
	Reason       string                 `json:"reason,omitempty"`
	Status       string                 `json:"status"`
	Lines        []DocumentLineResponse `json:"lines"`
	Summary      SummaryResponse        `json:"summary"`
	GrandTotal   Amount                 `json:"grandTotal"`
	Blocking     bool                   `json:"blocking"`
	CancelReason string                 `json:"cancelReason,omitempty"`
	PostedAt     *time.Time             `json:"postedAt,omitempty"`
	CancelledAt  *time.Time             `json:"cancelledAt,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// OrderLineProgressResponse represents one line of the purchase received table
type OrderLineProgressResponse struct {
	Ref           string `json:"ref"`
	Description   string `json:"description,omitempty"`
	TrackingMode  string `json:"trackingMode"`
	UnitRef       string `json:"unitRef"`
	Ordered       Amount `json:"ordered"`
	Received      Amount `json:"received"`
	Remaining     Amount `json:"remaining"`
	CompletionPct Amount `json:"completionPct"`
}

// StockInRefResponse identifies a GRN raised against an order
type StockInRefResponse struct {
	StockInID string     `json:"stockInId"`
	GRNNumber string     `json:"grnNumber"`
	Status    string     `json:"status"`
	PostedAt  *time.Time `json:"postedAt,omitempty"`
}

// OrderReconciliationResponse represents the purchase received view of an order
type OrderReconciliationResponse struct {
	PurchaseOrderID string                      `json:"purchaseOrderId"`
	OrderNumber     string                      `json:"orderNumber"`
	Status          string                      `json:"status"`
	Lines           []OrderLineProgressResponse `json:"lines"`
	Summary         SummaryResponse             `json:"summary"`
	StockIns        []StockInRefResponse        `json:"stockIns"`
	GeneratedAt     time.Time                   `json:"generatedAt"`
}

// CatalogEntryResponse represents a catalog entry in responses
type CatalogEntryResponse struct {
	EntryID      string            `json:"entryId"`
	Kind         string            `json:"kind"`
	Code         string            `json:"code,omitempty"`
	Label        string            `json:"label"`
	Active       bool              `json:"active"`
	TrackingMode string            `json:"trackingMode,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// LabelsResponse maps catalog ids to labels
type LabelsResponse struct {
	Kind   string            `json:"kind"`
	Labels map[string]string `json:"labels"`
}

func toHeaderResponse(h domain.DocumentHeader) HeaderResponse {
	resp := HeaderResponse{
		DocumentDate: Date{Time: h.DocumentDate},
		PartyRef:     h.PartyRef,
		BranchRef:    h.BranchRef,
		Remarks:      h.Remarks,
	}
	if h.ExpectedDate != nil {
		resp.ExpectedDate = &Date{Time: *h.ExpectedDate}
	}
	return resp
}

// ToSummaryResponse converts a reconciliation summary
func ToSummaryResponse(s reconciliation.Summary) SummaryResponse {
	return SummaryResponse{
		TotalOrdered:   NewAmount(s.TotalOrdered),
		TotalFulfilled: NewAmount(s.TotalFulfilled),
		Pending:        NewAmount(s.Pending),
		CompletionPct:  NewAmount(s.CompletionPct),
	}
}

func toValidationErrors(errs []reconciliation.ValidationError) []ValidationErrorResponse {
	out := make([]ValidationErrorResponse, len(errs))
	for i, e := range errs {
		out[i] = ValidationErrorResponse{
			Code:     string(e.Code),
			Field:    e.Field,
			Message:  e.Message,
			Blocking: e.Blocking(),
		}
	}
	return out
}

// ToReconciliationResponse converts a reconciliation result
func ToReconciliationResponse(result reconciliation.Result) ReconciliationResponse {
	lines := make([]LineResultResponse, len(result.Lines))
	for i, line := range result.Lines {
		lines[i] = LineResultResponse{
			Ref:          line.Ref,
			TrackingMode: string(line.TrackingMode),
			Active:       NewAmount(line.Active),
			Baseline:     NewAmount(line.Baseline),
			Outstanding:  NewAmount(line.Outstanding),
			LineTotal:    NewAmount(line.LineTotal),
			Errors:       toValidationErrors(line.Errors),
		}
	}
	return ReconciliationResponse{
		Lines:      lines,
		Summary:    ToSummaryResponse(result.Summary),
		GrandTotal: NewAmount(result.GrandTotal),
		Blocking:   result.Blocking,
	}
}

// ToPurchaseOrderResponse converts a domain purchase order
func ToPurchaseOrderResponse(po *domain.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]OrderLineResponse, len(po.Lines))
	for i, line := range po.Lines {
		lines[i] = OrderLineResponse{
			Ref:          line.Ref,
			Description:  line.Description,
			TrackingMode: string(line.TrackingMode),
			UnitRef:      line.UnitRef,
			Ordered:      NewAmount(line.Ordered),
			UnitCost:     NewAmount(line.UnitCost),
			Received:     NewAmount(line.Received),
			Remaining:    NewAmount(line.Remaining()),
		}
	}

	return PurchaseOrderResponse{
		PurchaseOrderID: po.PurchaseOrderID,
		OrderNumber:     po.OrderNumber,
		Header:          toHeaderResponse(po.Header),
		Status:          string(po.Status),
		Lines:           lines,
		Summary:         ToSummaryResponse(po.Reconciliation()),
		OrderValue:      NewAmount(po.OrderValue()),
		CancelReason:    po.CancelReason,
		ConfirmedAt:     po.ConfirmedAt,
		CompletedAt:     po.CompletedAt,
		CancelledAt:     po.CancelledAt,
		CreatedAt:       po.CreatedAt,
		UpdatedAt:       po.UpdatedAt,
	}
}

// documentTotals returns the posted totals of a posted document, otherwise its live totals
func documentTotals(posted *reconciliation.Summary, postedTotal *decimal.Decimal, live func() (reconciliation.Summary, decimal.Decimal)) (SummaryResponse, Amount) {
	if posted != nil && postedTotal != nil {
		return ToSummaryResponse(*posted), NewAmount(*postedTotal)
	}
	summary, total := live()
	return ToSummaryResponse(summary), NewAmount(total)
}

func toDocumentLine(item reconciliation.LineItem, description string, errs []reconciliation.ValidationError) DocumentLineResponse {
	return DocumentLineResponse{
		Ref:          item.Ref,
		Description:  description,
		TrackingMode: string(item.TrackingMode),
		UnitRef:      item.UnitRef,
		Ordered:      NewAmount(item.Ordered),
		Count:        NewAmount(item.Count),
		Weight:       NewAmount(item.Weight),
		UnitCost:     NewAmount(item.UnitCost),
		LineTotal:    NewAmount(reconciliation.LineTotal(item)),
		Errors:       toValidationErrors(errs),
	}
}

// ToStockInResponse converts a domain stock-in. Draft GRNs carry their live validation.
func ToStockInResponse(si *domain.StockIn) StockInResponse {
	var findings map[string][]reconciliation.ValidationError
	if si.Status == domain.PostingStatusDraft {
		findings = si.Validate()
	}

	blocking := false
	lines := make([]DocumentLineResponse, len(si.Lines))
	for i, line := range si.Lines {
		errs := findings[line.Ref]
		if reconciliation.HasBlocking(errs) {
			blocking = true
		}
		lines[i] = toDocumentLine(line.LineItem, line.Description, errs)
		returned := NewAmount(line.Returned)
		lines[i].Returned = &returned
	}

	summary, total := documentTotals(si.PostedSummary, si.PostedGrandTotal, func() (reconciliation.Summary, decimal.Decimal) {
		return si.Summary(), si.GrandTotal()
	})

	overReceived := si.OverReceived()
	if overReceived == nil {
		overReceived = []string{}
	}

	return StockInResponse{
		StockInID:          si.StockInID,
		GRNNumber:          si.GRNNumber,
		PurchaseOrderID:    si.PurchaseOrderID,
		Manual:             si.IsManual(),
		Header:             toHeaderResponse(si.Header),
		SupplierInvoiceRef: si.SupplierInvoiceRef,
		Status:             string(si.Status),
		Lines:              lines,
		Summary:            summary,
		GrandTotal:         total,
		Blocking:           blocking,
		OverReceived:       overReceived,
		CancelReason:       si.CancelReason,
		PostedAt:           si.PostedAt,
		CancelledAt:        si.CancelledAt,
		CreatedAt:          si.CreatedAt,
		UpdatedAt:          si.UpdatedAt,
	}
}

// ToPurchaseReturnResponse converts a domain purchase return
func ToPurchaseReturnResponse(pr *domain.PurchaseReturn) PurchaseReturnResponse {
	var findings map[string][]reconciliation.ValidationError
	if pr.Status == domain.PostingStatusDraft {
		findings = pr.Validate()
	}

	blocking := false
	lines := make([]DocumentLineResponse, len(pr.Lines))
	for i, line := range pr.Lines {
		errs := findings[line.Ref]
		if reconciliation.HasBlocking(errs) {
			blocking = true
		}
		lines[i] = toDocumentLine(line.LineItem, line.Description, errs)
	}

	summary, total := documentTotals(pr.PostedSummary, pr.PostedGrandTotal, func() (reconciliation.Summary, decimal.Decimal) {
		return pr.Summary(), pr.GrandTotal()
	})

	return PurchaseReturnResponse{
		ReturnID:     pr.ReturnID,
		ReturnNumber: pr.ReturnNumber,
		StockInID:    pr.StockInID,
		Header:       toHeaderResponse(pr.Header),
		Reason:       pr.Reason,
		Status:       string(pr.Status),
		Lines:        lines,
		Summary:      summary,
		GrandTotal:   total,
		Blocking:     blocking,
		CancelReason: pr.CancelReason,
		PostedAt:     pr.PostedAt,
		CancelledAt:  pr.CancelledAt,
		CreatedAt:    pr.CreatedAt,
		UpdatedAt:    pr.UpdatedAt,
	}
}

// ToOrderReconciliationResponse converts the purchase received view
func ToOrderReconciliationResponse(view *application.OrderReconciliation) OrderReconciliationResponse {
	lines := make([]OrderLineProgressResponse, len(view.Lines))
	for i, line := range view.Lines {
		lines[i] = OrderLineProgressResponse{
			Ref:           line.Ref,
			Description:   line.Description,
			TrackingMode:  string(line.TrackingMode),
			UnitRef:       line.UnitRef,
			Ordered:       NewAmount(line.Ordered),
			Received:      NewAmount(line.Received),
			Remaining:     NewAmount(line.Remaining),
			CompletionPct: NewAmount(line.CompletionPct),
		}
	}

	stockIns := make([]StockInRefResponse, len(view.StockIns))
	for i, ref := range view.StockIns {
		stockIns[i] = StockInRefResponse{
			StockInID: ref.StockInID,
			GRNNumber: ref.GRNNumber,
			Status:    string(ref.Status),
			PostedAt:  ref.PostedAt,
		}
	}

	return OrderReconciliationResponse{
		PurchaseOrderID: view.PurchaseOrderID,
		OrderNumber:     view.OrderNumber,
		Status:          string(view.Status),
		Lines:           lines,
		Summary:         ToSummaryResponse(view.Summary),
		StockIns:        stockIns,
		GeneratedAt:     view.GeneratedAt,
	}
}

// ToCatalogEntryResponse converts a domain catalog entry
func ToCatalogEntryResponse(entry *domain.CatalogEntry) CatalogEntryResponse {
	return CatalogEntryResponse{
		EntryID:      entry.EntryID,
		Kind:         string(entry.Kind),
		Code:         entry.Code,
		Label:        entry.Label,
		Active:       entry.Active,
		TrackingMode: string(entry.TrackingMode),
		Attributes:   entry.Attributes,
		CreatedAt:    entry.CreatedAt,
		UpdatedAt:    entry.UpdatedAt,
	}
}

// ToLabelsResponse converts resolved labels
func ToLabelsResponse(kind domain.CatalogKind, labels map[string]string) LabelsResponse {
	if labels == nil {
		labels = map[string]string{}
	}
	return LabelsResponse{Kind: string(kind), Labels: labels}
}

// Map converts every item of a page with fn
func Map[S, T any](items []S, fn func(S) T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}
