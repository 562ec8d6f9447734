package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
)

// StockIn errors
var (
	ErrStockInNotFound       = errors.New("stock-in not found")
	ErrNothingReceived       = errors.New("no line has a received amount")
	ErrNothingToReceive      = errors.New("purchase order has nothing left to receive")
	ErrNotManualStockIn      = errors.New("lines can only be added to a manual stock-in")
	ErrStockInNotPosted      = errors.New("stock-in is not posted")
	ErrReturnExceedsReceived = errors.New("returned amount exceeds the received amount")
)

// StockInLine is a goods receipt line. Returned is cumulative and only changed by posted returns.
type StockInLine struct {
	reconciliation.LineItem `bson:",inline"`
	Description             string          `bson:"description,omitempty" json:"description,omitempty"`
	Returned                decimal.Decimal `bson:"returned" json:"returned"`
}

// Received is the amount received on the line
func (l StockInLine) Received() decimal.Decimal {
	return reconciliation.ActiveAmount(l.LineItem)
}

// StockIn is a goods receipt note (GRN), raised against a purchase order or manually
type StockIn struct {
	ID                 primitive.ObjectID      `bson:"_id,omitempty" json:"-"`
	StockInID          string                  `bson:"stockInId" json:"stockInId"`
	GRNNumber          string                  `bson:"grnNumber" json:"grnNumber"`
	PurchaseOrderID    string                  `bson:"purchaseOrderId,omitempty" json:"purchaseOrderId,omitempty"`
	Header             DocumentHeader          `bson:"header" json:"header"`
	SupplierInvoiceRef string                  `bson:"supplierInvoiceRef,omitempty" json:"supplierInvoiceRef,omitempty"`
	Status             PostingStatus           `bson:"status" json:"status"`
	Lines              []StockInLine           `bson:"lines" json:"lines"`
	PostedSummary      *reconciliation.Summary `bson:"postedSummary,omitempty" json:"postedSummary,omitempty"`
	PostedGrandTotal   *decimal.Decimal        `bson:"postedGrandTotal,omitempty" json:"postedGrandTotal,omitempty"`
	CancelReason       string                  `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	PostedAt           *time.Time              `bson:"postedAt,omitempty" json:"postedAt,omitempty"`
	CancelledAt        *time.Time              `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedAt          time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time               `bson:"updatedAt" json:"updatedAt"`
	DomainEvents       []DomainEvent           `bson:"-" json:"-"`
}

// NewStockInFromOrder drafts a GRN seeded from the lines still outstanding on an order
func NewStockInFromOrder(po *PurchaseOrder, header DocumentHeader, supplierInvoiceRef string) (*StockIn, error) {
	if !po.Status.Receivable() {
		return nil, ErrOrderNotReceivable
	}
	if header.PartyRef == "" {
		header.PartyRef = po.Header.PartyRef
	}
	if header.BranchRef == "" {
		header.BranchRef = po.Header.BranchRef
	}

	lines := make([]StockInLine, 0, len(po.Lines))
	for _, item := range po.SeedLines() {
		if !item.Ordered.IsPositive() {
			continue
		}
		orderLine, _ := po.Line(item.Ref)
		lines = append(lines, StockInLine{LineItem: item, Description: orderLine.Description})
	}
	if len(lines) == 0 {
		return nil, ErrNothingToReceive
	}

	return newStockIn(po.PurchaseOrderID, header, supplierInvoiceRef, lines)
}

// NewManualStockIn drafts a GRN with no order baseline
func NewManualStockIn(header DocumentHeader, supplierInvoiceRef string) (*StockIn, error) {
	return newStockIn("", header, supplierInvoiceRef, []StockInLine{})
}

func newStockIn(purchaseOrderID string, header DocumentHeader, supplierInvoiceRef string, lines []StockInLine) (*StockIn, error) {
	if err := header.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	si := &StockIn{
		ID:                 primitive.NewObjectID(),
		StockInID:          uuid.NewString(),
		GRNNumber:          generateDocumentNumber("GRN", now),
		PurchaseOrderID:    purchaseOrderID,
		Header:             header,
		SupplierInvoiceRef: supplierInvoiceRef,
		Status:             PostingStatusDraft,
		Lines:              lines,
		CreatedAt:          now,
		UpdatedAt:          now,
		DomainEvents:       make([]DomainEvent, 0),
	}

	si.addDomainEvent(&StockInCreatedEvent{
		StockInID:       si.StockInID,
		GRNNumber:       si.GRNNumber,
		PurchaseOrderID: purchaseOrderID,
		PartyRef:        header.PartyRef,
		BranchRef:       header.BranchRef,
		LineCount:       len(lines),
		OccurredAt_:     now,
	})

	return si, nil
}

// IsManual reports whether the GRN has no purchase order baseline
func (si *StockIn) IsManual() bool {
	return si.PurchaseOrderID == ""
}

func (si *StockIn) ensureDraft() error {
	if si.Status != PostingStatusDraft {
		return ErrDocumentNotEditable
	}
	return nil
}

func (si *StockIn) line(ref string) (*StockInLine, error) {
	for i := range si.Lines {
		if si.Lines[i].Ref == ref {
			return &si.Lines[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLineNotFound, ref)
}

func (si *StockIn) editLine(ref string, edit func(*StockInLine) error) error {
	if err := si.ensureDraft(); err != nil {
		return err
	}
	line, err := si.line(ref)
	if err != nil {
		return err
	}
	if err := edit(line); err != nil {
		return err
	}
	si.UpdatedAt = time.Now().UTC()
	return nil
}

// SetHeader replaces the header while the GRN is a draft
func (si *StockIn) SetHeader(header DocumentHeader, supplierInvoiceRef string) error {
	if err := si.ensureDraft(); err != nil {
		return err
	}
	if err := header.Validate(); err != nil {
		return err
	}
	si.Header = header
	si.SupplierInvoiceRef = supplierInvoiceRef
	si.UpdatedAt = time.Now().UTC()
	return nil
}

// SetLineCount sets the received count on a COUNT line
func (si *StockIn) SetLineCount(ref string, count decimal.Decimal) error {
	return si.editLine(ref, func(l *StockInLine) error {
		return setAmount(&l.LineItem, reconciliation.ModeCount, count)
	})
}

// SetLineWeight sets the received weight on a WEIGHT line
func (si *StockIn) SetLineWeight(ref string, weight decimal.Decimal) error {
	return si.editLine(ref, func(l *StockInLine) error {
		return setAmount(&l.LineItem, reconciliation.ModeWeight, weight)
	})
}

// SetLineUnitCost sets the unit cost of a line
func (si *StockIn) SetLineUnitCost(ref string, unitCost decimal.Decimal) error {
	return si.editLine(ref, func(l *StockInLine) error {
		l.UnitCost = unitCost
		return nil
	})
}

// SetLineUnit sets the unit of a line
func (si *StockIn) SetLineUnit(ref, unitRef string) error {
	return si.editLine(ref, func(l *StockInLine) error {
		l.UnitRef = strings.TrimSpace(unitRef)
		return nil
	})
}

// ClearLine zeroes the received amounts of a line
func (si *StockIn) ClearLine(ref string) error {
	return si.editLine(ref, func(l *StockInLine) error {
		l.Count = decimal.Zero
		l.Weight = decimal.Zero
		return nil
	})
}

// AddManualLine appends a line to a manual GRN. The line has no ordered baseline.
func (si *StockIn) AddManualLine(ref, description string, mode reconciliation.TrackingMode, unitRef string, unitCost decimal.Decimal) error {
	if err := si.ensureDraft(); err != nil {
		return err
	}
	if !si.IsManual() {
		return ErrNotManualStockIn
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ErrLineRefRequired
	}
	if !mode.IsSet() {
		return fmt.Errorf("line %s: %w", ref, ErrTrackingModeRequired)
	}
	if _, err := si.line(ref); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateLineRef, ref)
	}

	si.Lines = append(si.Lines, StockInLine{
		LineItem: reconciliation.LineItem{
			Ref:          ref,
			TrackingMode: mode,
			UnitRef:      strings.TrimSpace(unitRef),
			UnitCost:     unitCost,
		},
		Description: description,
	})
	si.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveLine drops a line while the GRN is a draft
func (si *StockIn) RemoveLine(ref string) error {
	if err := si.ensureDraft(); err != nil {
		return err
	}
	for i := range si.Lines {
		if si.Lines[i].Ref == ref {
			si.Lines = append(si.Lines[:i], si.Lines[i+1:]...)
			si.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrLineNotFound, ref)
}

// Items returns the calculator view of the lines
func (si *StockIn) Items() []reconciliation.LineItem {
	items := make([]reconciliation.LineItem, len(si.Lines))
	for i, line := range si.Lines {
		items[i] = line.LineItem
	}
	return items
}

// Validate returns the validation errors per line ref. Lines of a manual GRN are never
// flagged as exceeding the order.
func (si *StockIn) Validate() map[string][]reconciliation.ValidationError {
	return validateLines(si.Items(), si.IsManual())
}

// Summary delegates to the calculator
func (si *StockIn) Summary() reconciliation.Summary {
	return reconciliation.Aggregate(si.Items())
}

// GrandTotal delegates to the calculator
func (si *StockIn) GrandTotal() decimal.Decimal {
	return reconciliation.GrandTotal(si.Items())
}

// OverReceived lists the lines received above the order baseline
func (si *StockIn) OverReceived() []string {
	if si.IsManual() {
		return []string{}
	}
	refs := exceeding(si.Items())
	if refs == nil {
		return []string{}
	}
	return refs
}

// Post freezes the GRN and returns the received amount per line ref for the order
func (si *StockIn) Post() (reconciliation.Fulfillments, error) {
	if !si.Status.CanTransitionTo(PostingStatusPosted) {
		return nil, ErrInvalidStatusTransition
	}
	if lines := blocking(si.Validate()); len(lines) > 0 {
		return nil, &BlockingValidationError{Lines: lines}
	}

	items := si.Items()
	received := fulfilled(items)
	if len(received) == 0 {
		return nil, ErrNothingReceived
	}

	now := time.Now().UTC()
	summary := reconciliation.Aggregate(items)
	grandTotal := reconciliation.GrandTotal(items)

	si.Status = PostingStatusPosted
	si.PostedSummary = &summary
	si.PostedGrandTotal = &grandTotal
	si.PostedAt = &now
	si.UpdatedAt = now

	si.addDomainEvent(&StockInPostedEvent{
		StockInID:       si.StockInID,
		GRNNumber:       si.GRNNumber,
		PurchaseOrderID: si.PurchaseOrderID,
		PartyRef:        si.Header.PartyRef,
		BranchRef:       si.Header.BranchRef,
		Summary:         summary,
		GrandTotal:      grandTotal,
		OverReceived:    si.OverReceived(),
		Lines:           postedLines(items),
		PostedAt:        now,
	})

	return received, nil
}

// Cancel cancels a draft GRN
func (si *StockIn) Cancel(reason string) error {
	if !si.Status.CanTransitionTo(PostingStatusCancelled) {
		return ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	si.Status = PostingStatusCancelled
	si.CancelReason = reason
	si.CancelledAt = &now
	si.UpdatedAt = now

	si.addDomainEvent(&StockInCancelledEvent{
		StockInID:   si.StockInID,
		Reason:      reason,
		CancelledAt: now,
	})
	return nil
}

// ReturnSeed returns the items a purchase return is reconciled against and the amounts
// already returned. The ordered baseline of each item is its received amount.
func (si *StockIn) ReturnSeed() ([]reconciliation.LineItem, reconciliation.Fulfillments) {
	items := make([]reconciliation.LineItem, 0, len(si.Lines))
	prior := make(reconciliation.Fulfillments)
	for _, line := range si.Lines {
		received := line.Received()
		if !received.IsPositive() {
			continue
		}
		items = append(items, reconciliation.LineItem{
			Ref:          line.Ref,
			TrackingMode: line.TrackingMode,
			UnitRef:      line.UnitRef,
			Ordered:      received,
			UnitCost:     line.UnitCost,
		})
		if line.Returned.IsPositive() {
			prior[line.Ref] = line.Returned
		}
	}
	return items, prior
}

// ApplyReturn adds the amounts of a posted return to the returned totals
func (si *StockIn) ApplyReturn(returned reconciliation.Fulfillments) error {
	if si.Status != PostingStatusPosted {
		return ErrStockInNotPosted
	}
	for ref, amount := range returned {
		line, err := si.line(ref)
		if err != nil {
			return err
		}
		if line.Returned.Add(amount).GreaterThan(line.Received()) {
			return fmt.Errorf("%w: %s", ErrReturnExceedsReceived, ref)
		}
	}

	for ref, amount := range returned {
		line, _ := si.line(ref)
		line.Returned = line.Returned.Add(amount)
	}
	si.UpdatedAt = time.Now().UTC()
	return nil
}

func (si *StockIn) addDomainEvent(event DomainEvent) {
	si.DomainEvents = append(si.DomainEvents, event)
}

// GetDomainEvents returns all domain events
func (si *StockIn) GetDomainEvents() []DomainEvent {
	return si.DomainEvents
}

// ClearDomainEvents clears all domain events
func (si *StockIn) ClearDomainEvents() {
	si.DomainEvents = make([]DomainEvent, 0)
}
