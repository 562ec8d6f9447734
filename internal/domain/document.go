package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
)

// Errors shared by every document
var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrDocumentNotEditable     = errors.New("document is not editable in its current status")
	ErrDocumentDateRequired    = errors.New("document date is required")
	ErrPartyRequired           = errors.New("party reference is required")
	ErrExpectedBeforeDocument  = errors.New("expected date cannot be before the document date")
	ErrLineNotFound            = errors.New("line not found")
	ErrLineRefRequired         = errors.New("line reference is required")
	ErrDuplicateLineRef        = errors.New("duplicate line reference")
	ErrTrackingModeRequired    = errors.New("tracking mode is required")
	ErrWrongTrackingAxis       = errors.New("amount does not match the line tracking mode")
	ErrBlockingValidation      = errors.New("document has blocking validation errors")
)

// DocumentHeader carries the header fields common to orders, receipts and returns
type DocumentHeader struct {
	DocumentDate time.Time  `bson:"documentDate" json:"documentDate"`
	ExpectedDate *time.Time `bson:"expectedDate,omitempty" json:"expectedDate,omitempty"`
	PartyRef     string     `bson:"partyRef" json:"partyRef"`
	BranchRef    string     `bson:"branchRef,omitempty" json:"branchRef,omitempty"`
	Remarks      string     `bson:"remarks,omitempty" json:"remarks,omitempty"`
}

// Validate checks the required header fields
func (h DocumentHeader) Validate() error {
	if h.DocumentDate.IsZero() {
		return ErrDocumentDateRequired
	}
	if strings.TrimSpace(h.PartyRef) == "" {
		return ErrPartyRequired
	}
	if h.ExpectedDate != nil && h.ExpectedDate.Before(h.DocumentDate) {
		return ErrExpectedBeforeDocument
	}
	return nil
}

// PostingStatus is the lifecycle of stock-ins and purchase returns
type PostingStatus string

const (
	PostingStatusDraft     PostingStatus = "draft"
	PostingStatusPosted    PostingStatus = "posted"
	PostingStatusCancelled PostingStatus = "cancelled"
)

// IsValid checks if the status is valid
func (s PostingStatus) IsValid() bool {
	switch s {
	case PostingStatusDraft, PostingStatusPosted, PostingStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if the status can transition to another status
func (s PostingStatus) CanTransitionTo(target PostingStatus) bool {
	return s == PostingStatusDraft && (target == PostingStatusPosted || target == PostingStatusCancelled)
}

// BlockingValidationError lists the line errors that stopped a document from posting.
// It matches ErrBlockingValidation with errors.Is.
type BlockingValidationError struct {
	Lines map[string][]reconciliation.ValidationError
}

func (e *BlockingValidationError) Error() string {
	return fmt.Sprintf("%s on %d line(s)", ErrBlockingValidation.Error(), len(e.Lines))
}

func (e *BlockingValidationError) Unwrap() error {
	return ErrBlockingValidation
}

// generateDocumentNumber returns e.g. GRN-20260114-3F9A1C2B
func generateDocumentNumber(prefix string, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return prefix + "-" + at.Format("20060102") + "-" + suffix
}

// setAmount writes amount on the axis selected by the line's tracking mode
func setAmount(item *reconciliation.LineItem, mode reconciliation.TrackingMode, amount decimal.Decimal) error {
	if item.TrackingMode != mode {
		return fmt.Errorf("%w: line %s is tracked by %s", ErrWrongTrackingAxis, item.Ref, strings.ToLower(string(item.TrackingMode)))
	}
	if mode == reconciliation.ModeCount {
		item.Count = amount
	} else {
		item.Weight = amount
	}
	return nil
}

// validateLines runs the calculator over every aggregated line and keeps the lines with errors
func validateLines(items []reconciliation.LineItem, ignoreBaseline bool) map[string][]reconciliation.ValidationError {
	out := make(map[string][]reconciliation.ValidationError)
	for _, item := range items {
		if !reconciliation.Aggregated(item) {
			continue
		}
		errs := reconciliation.ValidateLine(item)
		if ignoreBaseline {
			errs = reconciliation.Without(errs, reconciliation.CodeExceedsOrdered)
		}
		if len(errs) > 0 {
			out[item.Ref] = errs
		}
	}
	return out
}

// blocking keeps only the lines with blocking errors
func blocking(lineErrs map[string][]reconciliation.ValidationError) map[string][]reconciliation.ValidationError {
	out := make(map[string][]reconciliation.ValidationError)
	for ref, errs := range lineErrs {
		if reconciliation.HasBlocking(errs) {
			out[ref] = errs
		}
	}
	return out
}

// fulfilled returns the positive active amount per aggregated line
func fulfilled(items []reconciliation.LineItem) reconciliation.Fulfillments {
	out := make(reconciliation.Fulfillments)
	for _, item := range items {
		if !reconciliation.Aggregated(item) {
			continue
		}
		if amount := reconciliation.ActiveAmount(item); amount.IsPositive() {
			out[item.Ref] = amount
		}
	}
	return out
}

// exceeding lists refs whose active amount is over the baseline
func exceeding(items []reconciliation.LineItem) []string {
	var refs []string
	for _, item := range items {
		if reconciliation.Aggregated(item) && reconciliation.ActiveAmount(item).GreaterThan(item.Ordered) {
			refs = append(refs, item.Ref)
		}
	}
	return refs
}
