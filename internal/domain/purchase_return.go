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

// PurchaseReturn errors
var (
	ErrPurchaseReturnNotFound = errors.New("purchase return not found")
	ErrNothingToReturn        = errors.New("stock-in has nothing left to return")
	ErrNothingReturned        = errors.New("no line has a returned amount")
)

// ReturnLine is a purchase return line. Ordered holds the returnable baseline.
type ReturnLine struct {
	reconciliation.LineItem `bson:",inline"`
	Description             string `bson:"description,omitempty" json:"description,omitempty"`
}

// PurchaseReturn sends received stock back to the supplier
type PurchaseReturn struct {
	ID               primitive.ObjectID      `bson:"_id,omitempty" json:"-"`
	ReturnID         string                  `bson:"returnId" json:"returnId"`
	ReturnNumber     string                  `bson:"returnNumber" json:"returnNumber"`
	StockInID        string                  `bson:"stockInId" json:"stockInId"`
	Header           DocumentHeader          `bson:"header" json:"header"`
	Reason           string                  `bson:"reason,omitempty" json:"reason,omitempty"`
	Status           PostingStatus           `bson:"status" json:"status"`
	Lines            []ReturnLine            `bson:"lines" json:"lines"`
	PostedSummary    *reconciliation.Summary `bson:"postedSummary,omitempty" json:"postedSummary,omitempty"`
	PostedGrandTotal *decimal.Decimal        `bson:"postedGrandTotal,omitempty" json:"postedGrandTotal,omitempty"`
	CancelReason     string                  `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	PostedAt         *time.Time              `bson:"postedAt,omitempty" json:"postedAt,omitempty"`
	CancelledAt      *time.Time              `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedAt        time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time               `bson:"updatedAt" json:"updatedAt"`
	DomainEvents     []DomainEvent           `bson:"-" json:"-"`
}

// NewPurchaseReturn drafts a return against a posted GRN. Each line's baseline is what was
// received minus what earlier returns already took back; fully returned lines are left out.
func NewPurchaseReturn(stockIn *StockIn, header DocumentHeader, reason string) (*PurchaseReturn, error) {
	if stockIn.Status != PostingStatusPosted {
		return nil, ErrStockInNotPosted
	}
	if header.PartyRef == "" {
		header.PartyRef = stockIn.Header.PartyRef
	}
	if header.BranchRef == "" {
		header.BranchRef = stockIn.Header.BranchRef
	}
	if err := header.Validate(); err != nil {
		return nil, err
	}

	items, prior := stockIn.ReturnSeed()
	seeded := reconciliation.Reconcile(items, prior)

	descriptions := make(map[string]string, len(stockIn.Lines))
	for _, line := range stockIn.Lines {
		descriptions[line.Ref] = line.Description
	}

	lines := make([]ReturnLine, 0, len(items))
	for i, result := range seeded.Lines {
		if !result.Baseline.IsPositive() {
			continue
		}
		item := items[i]
		item.Ordered = result.Baseline
		lines = append(lines, ReturnLine{LineItem: item, Description: descriptions[item.Ref]})
	}
	if len(lines) == 0 {
		return nil, ErrNothingToReturn
	}

	now := time.Now().UTC()
	pr := &PurchaseReturn{
		ID:           primitive.NewObjectID(),
		ReturnID:     uuid.NewString(),
		ReturnNumber: generateDocumentNumber("PR", now),
		StockInID:    stockIn.StockInID,
		Header:       header,
		Reason:       reason,
		Status:       PostingStatusDraft,
		Lines:        lines,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}

	pr.addDomainEvent(&PurchaseReturnCreatedEvent{
		ReturnID:     pr.ReturnID,
		ReturnNumber: pr.ReturnNumber,
		StockInID:    pr.StockInID,
		PartyRef:     header.PartyRef,
		LineCount:    len(lines),
		OccurredAt_:  now,
	})

	return pr, nil
}

func (pr *PurchaseReturn) ensureDraft() error {
	if pr.Status != PostingStatusDraft {
		return ErrDocumentNotEditable
	}
	return nil
}

func (pr *PurchaseReturn) editLine(ref string, edit func(*ReturnLine) error) error {
	if err := pr.ensureDraft(); err != nil {
		return err
	}
	for i := range pr.Lines {
		if pr.Lines[i].Ref == ref {
			if err := edit(&pr.Lines[i]); err != nil {
				return err
			}
			pr.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrLineNotFound, ref)
}

// SetHeader replaces the header and reason while the return is a draft
func (pr *PurchaseReturn) SetHeader(header DocumentHeader, reason string) error {
	if err := pr.ensureDraft(); err != nil {
		return err
	}
	if err := header.Validate(); err != nil {
		return err
	}
	pr.Header = header
	pr.Reason = reason
	pr.UpdatedAt = time.Now().UTC()
	return nil
}

// SetLineCount sets the returned count on a COUNT line
func (pr *PurchaseReturn) SetLineCount(ref string, count decimal.Decimal) error {
	return pr.editLine(ref, func(l *ReturnLine) error {
		return setAmount(&l.LineItem, reconciliation.ModeCount, count)
	})
}

// SetLineWeight sets the returned weight on a WEIGHT line
func (pr *PurchaseReturn) SetLineWeight(ref string, weight decimal.Decimal) error {
	return pr.editLine(ref, func(l *ReturnLine) error {
		return setAmount(&l.LineItem, reconciliation.ModeWeight, weight)
	})
}

// SetLineUnitCost sets the unit cost of a line
func (pr *PurchaseReturn) SetLineUnitCost(ref string, unitCost decimal.Decimal) error {
	return pr.editLine(ref, func(l *ReturnLine) error {
		l.UnitCost = unitCost
		return nil
	})
}

// SetLineUnit sets the unit of a line
func (pr *PurchaseReturn) SetLineUnit(ref, unitRef string) error {
	return pr.editLine(ref, func(l *ReturnLine) error {
		l.UnitRef = strings.TrimSpace(unitRef)
		return nil
	})
}

// ClearLine zeroes the returned amounts of a line
func (pr *PurchaseReturn) ClearLine(ref string) error {
	return pr.editLine(ref, func(l *ReturnLine) error {
		l.Count = decimal.Zero
		l.Weight = decimal.Zero
		return nil
	})
}

// RemoveLine drops a line while the return is a draft
func (pr *PurchaseReturn) RemoveLine(ref string) error {
	if err := pr.ensureDraft(); err != nil {
		return err
	}
	for i := range pr.Lines {
		if pr.Lines[i].Ref == ref {
			pr.Lines = append(pr.Lines[:i], pr.Lines[i+1:]...)
			pr.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrLineNotFound, ref)
}

// Items returns the calculator view of the lines
func (pr *PurchaseReturn) Items() []reconciliation.LineItem {
	items := make([]reconciliation.LineItem, len(pr.Lines))
	for i, line := range pr.Lines {
		items[i] = line.LineItem
	}
	return items
}

// Validate returns the validation errors per line ref
func (pr *PurchaseReturn) Validate() map[string][]reconciliation.ValidationError {
	return validateLines(pr.Items(), false)
}

// Summary delegates to the calculator
func (pr *PurchaseReturn) Summary() reconciliation.Summary {
	return reconciliation.Aggregate(pr.Items())
}

// GrandTotal delegates to the calculator
func (pr *PurchaseReturn) GrandTotal() decimal.Decimal {
	return reconciliation.GrandTotal(pr.Items())
}

// Post freezes the return and returns the returned amount per line ref for the GRN.
// Returning more than the baseline is rejected.
func (pr *PurchaseReturn) Post() (reconciliation.Fulfillments, error) {
	if !pr.Status.CanTransitionTo(PostingStatusPosted) {
		return nil, ErrInvalidStatusTransition
	}
	if lines := blocking(pr.Validate()); len(lines) > 0 {
		return nil, &BlockingValidationError{Lines: lines}
	}

	items := pr.Items()
	if over := exceeding(items); len(over) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrReturnExceedsReceived, strings.Join(over, ", "))
	}
	returned := fulfilled(items)
	if len(returned) == 0 {
		return nil, ErrNothingReturned
	}

	now := time.Now().UTC()
	summary := reconciliation.Aggregate(items)
	grandTotal := reconciliation.GrandTotal(items)

	pr.Status = PostingStatusPosted
	pr.PostedSummary = &summary
	pr.PostedGrandTotal = &grandTotal
	pr.PostedAt = &now
	pr.UpdatedAt = now

	pr.addDomainEvent(&PurchaseReturnPostedEvent{
		ReturnID:     pr.ReturnID,
		ReturnNumber: pr.ReturnNumber,
		StockInID:    pr.StockInID,
		PartyRef:     pr.Header.PartyRef,
		Reason:       pr.Reason,
		Summary:      summary,
		GrandTotal:   grandTotal,
		Lines:        postedLines(items),
		PostedAt:     now,
	})

	return returned, nil
}

// Cancel cancels a draft return
func (pr *PurchaseReturn) Cancel(reason string) error {
	if !pr.Status.CanTransitionTo(PostingStatusCancelled) {
		return ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	pr.Status = PostingStatusCancelled
	pr.CancelReason = reason
	pr.CancelledAt = &now
	pr.UpdatedAt = now

	pr.addDomainEvent(&PurchaseReturnCancelledEvent{
		ReturnID:    pr.ReturnID,
		Reason:      reason,
		CancelledAt: now,
	})
	return nil
}

func (pr *PurchaseReturn) addDomainEvent(event DomainEvent) {
	pr.DomainEvents = append(pr.DomainEvents, event)
}

// GetDomainEvents returns all domain events
func (pr *PurchaseReturn) GetDomainEvents() []DomainEvent {
	return pr.DomainEvents
}

// ClearDomainEvents clears all domain events
func (pr *PurchaseReturn) ClearDomainEvents() {
	pr.DomainEvents = make([]DomainEvent, 0)
}
