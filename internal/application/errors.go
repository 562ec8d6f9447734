package application

import (
	"errors"
	"sort"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
	apperrors "github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/errors"
)

var notFoundErrors = map[error]string{
	domain.ErrPurchaseOrderNotFound:  "purchase order",
	domain.ErrStockInNotFound:        "stock-in",
	domain.ErrPurchaseReturnNotFound: "purchase return",
	domain.ErrCatalogEntryNotFound:   "catalog entry",
}

var invalidStateErrors = []error{
	domain.ErrInvalidStatusTransition,
	domain.ErrDocumentNotEditable,
	domain.ErrOrderNotReceivable,
	domain.ErrStockInNotPosted,
	domain.ErrNothingToReceive,
	domain.ErrNothingToReturn,
	domain.ErrCatalogEntryInactive,
	domain.ErrNotManualStockIn,
}

var badInputErrors = []error{
	domain.ErrDocumentDateRequired,
	domain.ErrPartyRequired,
	domain.ErrExpectedBeforeDocument,
	domain.ErrLineRefRequired,
	domain.ErrTrackingModeRequired,
	domain.ErrWrongTrackingAxis,
	domain.ErrNoOrderLines,
	domain.ErrInvalidOrderedAmount,
	domain.ErrInvalidCatalogKind,
	domain.ErrLabelRequired,
	domain.ErrUnitTrackingMode,
}

var unprocessableErrors = []error{
	domain.ErrNothingReceived,
	domain.ErrNothingReturned,
	domain.ErrReturnExceedsReceived,
}

// mapError converts domain errors to AppErrors. Unknown errors fall through to the
// message-based mapping.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}

	var bve *domain.BlockingValidationError
	if errors.As(err, &bve) {
		return apperrors.ErrUnprocessable("document has blocking line errors", LineErrorDetails(bve.Lines)).Wrap(err)
	}

	for target, resource := range notFoundErrors {
		if errors.Is(err, target) {
			return apperrors.ErrNotFound(resource).Wrap(err)
		}
	}
	if errors.Is(err, domain.ErrLineNotFound) {
		return apperrors.ErrNotFound("line").Wrap(err)
	}
	if errors.Is(err, domain.ErrDuplicateLineRef) {
		return apperrors.ErrConflict(err.Error()).Wrap(err)
	}
	for _, target := range invalidStateErrors {
		if errors.Is(err, target) {
			return apperrors.ErrInvalidState(err.Error()).Wrap(err)
		}
	}
	for _, target := range badInputErrors {
		if errors.Is(err, target) {
			return apperrors.ErrValidation(err.Error()).Wrap(err)
		}
	}
	for _, target := range unprocessableErrors {
		if errors.Is(err, target) {
			return apperrors.ErrUnprocessable(err.Error(), nil).Wrap(err)
		}
	}

	return apperrors.MapDomainError(err)
}

// LineErrorDetails flattens line errors into lines[<ref>].<field> keys. Messages for the
// same field are joined.
func LineErrorDetails(lines map[string][]reconciliation.ValidationError) map[string]string {
	details := make(map[string]string)
	refs := make([]string, 0, len(lines))
	for ref := range lines {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	for _, ref := range refs {
		for _, e := range lines[ref] {
			key := "lines[" + ref + "]." + e.Field
			if existing, ok := details[key]; ok {
				details[key] = existing + "; " + e.Message
				continue
			}
			details[key] = e.Message
		}
	}
	return details
}
