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

// PurchaseOrder errors
var (
	ErrPurchaseOrderNotFound = errors.New("purchase order not found")
	ErrNoOrderLines          = errors.New("purchase order must have at least one line")
	ErrInvalidOrderedAmount  = errors.New("ordered amount must be greater than zero")
	ErrOrderNotReceivable    = errors.New("purchase order is not open for receiving")
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft             PurchaseOrderStatus = "draft"
	PurchaseOrderStatusOpen              PurchaseOrderStatus = "open"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "partially_received"
	PurchaseOrderStatusReceived          PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "cancelled"
)

// IsValid checks if the status is valid
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusOpen, PurchaseOrderStatusPartiallyReceived,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if the status can transition to another status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	validTransitions := map[PurchaseOrderStatus][]PurchaseOrderStatus{
		PurchaseOrderStatusDraft:             {PurchaseOrderStatusOpen, PurchaseOrderStatusCancelled},
		PurchaseOrderStatusOpen:              {PurchaseOrderStatusPartiallyReceived, PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled},
		PurchaseOrderStatusPartiallyReceived: {PurchaseOrderStatusPartiallyReceived, PurchaseOrderStatusReceived},
		PurchaseOrderStatusReceived:          {},
		PurchaseOrderStatusCancelled:         {},
	}

	for _, allowed := range validTransitions[s] {
		if target == allowed {
			return true
		}
	}
	return false
}

// Receivable reports whether stock-ins may be raised against an order in this status
func (s PurchaseOrderStatus) Receivable() bool {
	return s == PurchaseOrderStatusOpen || s == PurchaseOrderStatusPartiallyReceived
}

// OrderLine is one ordered item. Received is cumulative and only changed by posted stock-ins.
type OrderLine struct {
	Ref          string                      `bson:"ref" json:"ref"`
	Description  string                      `bson:"description,omitempty" json:"description,omitempty"`
	TrackingMode reconciliation.TrackingMode `bson:"trackingMode" json:"trackingMode"`
	UnitRef      string                      `bson:"unitRef" json:"unitRef"`
	Ordered      decimal.Decimal             `bson:"ordered" json:"ordered"`
	UnitCost     decimal.Decimal             `bson:"unitCost" json:"unitCost"`
	Received     decimal.Decimal             `bson:"received" json:"received"`
}

// Remaining returns the amount still to be received, floored at zero
func (l OrderLine) Remaining() decimal.Decimal {
	remaining := l.Ordered.Sub(l.Received)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyReceived returns true if nothing remains to be received
func (l OrderLine) IsFullyReceived() bool {
	return !l.Received.LessThan(l.Ordered)
}

// item returns the line as a calculator item with the received amount as fulfilment
func (l OrderLine) item() reconciliation.LineItem {
	li := reconciliation.LineItem{
		Ref:          l.Ref,
		TrackingMode: l.TrackingMode,
		UnitRef:      l.UnitRef,
		Ordered:      l.Ordered,
		UnitCost:     l.UnitCost,
	}
	if l.TrackingMode == reconciliation.ModeWeight {
		li.Weight = l.Received
	} else {
		li.Count = l.Received
	}
	return li
}

func (l OrderLine) validate() error {
	switch {
	case strings.TrimSpace(l.Ref) == "":
		return ErrLineRefRequired
	case !l.TrackingMode.IsSet():
		return fmt.Errorf("line %s: %w", l.Ref, ErrTrackingModeRequired)
	case !l.Ordered.IsPositive():
		return fmt.Errorf("line %s: %w", l.Ref, ErrInvalidOrderedAmount)
	}
	return nil
}

func validateOrderLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return ErrNoOrderLines
	}
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if err := line.validate(); err != nil {
			return err
		}
		if _, dup := seen[line.Ref]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateLineRef, line.Ref)
		}
		seen[line.Ref] = struct{}{}
	}
	return nil
}

// PurchaseOrder is the order source a goods receipt is reconciled against
type PurchaseOrder struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"-"`
	PurchaseOrderID string              `bson:"purchaseOrderId" json:"purchaseOrderId"`
	OrderNumber     string              `bson:"orderNumber" json:"orderNumber"`
	Header          DocumentHeader      `bson:"header" json:"header"`
	Status          PurchaseOrderStatus `bson:"status" json:"status"`
	Lines           []OrderLine         `bson:"lines" json:"lines"`
	CancelReason    string              `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	ConfirmedAt     *time.Time          `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CompletedAt     *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt     *time.Time          `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
	DomainEvents    []DomainEvent       `bson:"-" json:"-"`
}

// NewPurchaseOrder creates a draft purchase order
func NewPurchaseOrder(header DocumentHeader, lines []OrderLine) (*PurchaseOrder, error) {
	if err := header.Validate(); err != nil {
		return nil, err
	}
	if err := validateOrderLines(lines); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	owned := make([]OrderLine, len(lines))
	for i, line := range lines {
		line.Received = decimal.Zero
		owned[i] = line
	}

	po := &PurchaseOrder{
		ID:              primitive.NewObjectID(),
		PurchaseOrderID: uuid.NewString(),
		OrderNumber:     generateDocumentNumber("PO", now),
		Header:          header,
		Status:          PurchaseOrderStatusDraft,
		Lines:           owned,
		CreatedAt:       now,
		UpdatedAt:       now,
		DomainEvents:    make([]DomainEvent, 0),
	}

	po.addDomainEvent(&PurchaseOrderCreatedEvent{
		PurchaseOrderID: po.PurchaseOrderID,
		OrderNumber:     po.OrderNumber,
		PartyRef:        header.PartyRef,
		BranchRef:       header.BranchRef,
		LineCount:       len(owned),
		TotalOrdered:    po.Reconciliation().TotalOrdered,
		OccurredAt_:     now,
	})

	return po, nil
}

func (po *PurchaseOrder) ensureDraft() error {
	if po.Status != PurchaseOrderStatusDraft {
		return ErrDocumentNotEditable
	}
	return nil
}

func (po *PurchaseOrder) lineIndex(ref string) int {
	for i := range po.Lines {
		if po.Lines[i].Ref == ref {
			return i
		}
	}
	return -1
}

// SetHeader replaces the header while the order is a draft
func (po *PurchaseOrder) SetHeader(header DocumentHeader) error {
	if err := po.ensureDraft(); err != nil {
		return err
	}
	if err := header.Validate(); err != nil {
		return err
	}
	po.Header = header
	po.UpdatedAt = time.Now().UTC()
	return nil
}

// AddLine appends a line while the order is a draft
func (po *PurchaseOrder) AddLine(line OrderLine) error {
	if err := po.ensureDraft(); err != nil {
		return err
	}
	if err := line.validate(); err != nil {
		return err
	}
	if po.lineIndex(line.Ref) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateLineRef, line.Ref)
	}
	line.Received = decimal.Zero
	po.Lines = append(po.Lines, line)
	po.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateLine replaces the line with the same Ref while the order is a draft
func (po *PurchaseOrder) UpdateLine(line OrderLine) error {
	if err := po.ensureDraft(); err != nil {
		return err
	}
	i := po.lineIndex(line.Ref)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, line.Ref)
	}
	if err := line.validate(); err != nil {
		return err
	}
	line.Received = decimal.Zero
	po.Lines[i] = line
	po.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveLine drops a line while the order is a draft. The last line cannot be removed.
func (po *PurchaseOrder) RemoveLine(ref string) error {
	if err := po.ensureDraft(); err != nil {
		return err
	}
	i := po.lineIndex(ref)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, ref)
	}
	if len(po.Lines) == 1 {
		return ErrNoOrderLines
	}
	po.Lines = append(po.Lines[:i], po.Lines[i+1:]...)
	po.UpdatedAt = time.Now().UTC()
	return nil
}

// Confirm opens the order for receiving
func (po *PurchaseOrder) Confirm() error {
	if !po.Status.CanTransitionTo(PurchaseOrderStatusOpen) {
		return ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	po.Status = PurchaseOrderStatusOpen
	po.ConfirmedAt = &now
	po.UpdatedAt = now

	po.addDomainEvent(&PurchaseOrderConfirmedEvent{
		PurchaseOrderID: po.PurchaseOrderID,
		OrderNumber:     po.OrderNumber,
		ConfirmedAt:     now,
	})
	return nil
}

// Cancel cancels a draft or open order
func (po *PurchaseOrder) Cancel(reason string) error {
	if !po.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	po.Status = PurchaseOrderStatusCancelled
	po.CancelReason = reason
	po.CancelledAt = &now
	po.UpdatedAt = now

	po.addDomainEvent(&PurchaseOrderCancelledEvent{
		PurchaseOrderID: po.PurchaseOrderID,
		Reason:          reason,
		CancelledAt:     now,
	})
	return nil
}

// ApplyReceipt adds the amounts of a posted stock-in to the received totals and moves the
// order to partially_received or received
func (po *PurchaseOrder) ApplyReceipt(stockInID string, received reconciliation.Fulfillments) error {
	if !po.Status.Receivable() {
		return ErrOrderNotReceivable
	}
	for ref := range received {
		if po.lineIndex(ref) < 0 {
			return fmt.Errorf("%w: %s", ErrLineNotFound, ref)
		}
	}

	for i := range po.Lines {
		if amount, ok := received[po.Lines[i].Ref]; ok {
			po.Lines[i].Received = po.Lines[i].Received.Add(amount)
		}
	}

	target := PurchaseOrderStatusPartiallyReceived
	if po.IsFullyReceived() {
		target = PurchaseOrderStatusReceived
	}
	if !po.Status.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	po.Status = target
	po.UpdatedAt = now
	if target == PurchaseOrderStatusReceived {
		po.CompletedAt = &now
	}

	po.addDomainEvent(&PurchaseOrderReceiptAppliedEvent{
		PurchaseOrderID: po.PurchaseOrderID,
		StockInID:       stockInID,
		Status:          string(target),
		Summary:         po.Reconciliation(),
		OccurredAt_:     now,
	})
	return nil
}

// IsFullyReceived checks if every line is fully received
func (po *PurchaseOrder) IsFullyReceived() bool {
	for _, line := range po.Lines {
		if !line.IsFullyReceived() {
			return false
		}
	}
	return true
}

// SeedLines returns the lines a new stock-in starts from: the ordered baseline is what remains
// to be received and the received amounts start at zero
func (po *PurchaseOrder) SeedLines() []reconciliation.LineItem {
	items := make([]reconciliation.LineItem, 0, len(po.Lines))
	for _, line := range po.Lines {
		items = append(items, reconciliation.LineItem{
			Ref:          line.Ref,
			TrackingMode: line.TrackingMode,
			UnitRef:      line.UnitRef,
			Ordered:      line.Remaining(),
			UnitCost:     line.UnitCost,
		})
	}
	return items
}

// Line returns the order line with the given ref
func (po *PurchaseOrder) Line(ref string) (OrderLine, bool) {
	if i := po.lineIndex(ref); i >= 0 {
		return po.Lines[i], true
	}
	return OrderLine{}, false
}

// Reconciliation summarizes ordered against received across every line
func (po *PurchaseOrder) Reconciliation() reconciliation.Summary {
	items := make([]reconciliation.LineItem, 0, len(po.Lines))
	for _, line := range po.Lines {
		items = append(items, line.item())
	}
	return reconciliation.Aggregate(items)
}

// OrderValue is the extended cost of the ordered amounts
func (po *PurchaseOrder) OrderValue() decimal.Decimal {
	total := decimal.Zero
	for _, line := range po.Lines {
		total = total.Add(line.Ordered.Mul(line.UnitCost))
	}
	return total
}

func (po *PurchaseOrder) addDomainEvent(event DomainEvent) {
	po.DomainEvents = append(po.DomainEvents, event)
}

// GetDomainEvents returns all domain events
func (po *PurchaseOrder) GetDomainEvents() []DomainEvent {
	return po.DomainEvents
}

// ClearDomainEvents clears all domain events
func (po *PurchaseOrder) ClearDomainEvents() {
	po.DomainEvents = make([]DomainEvent, 0)
}
