package reconciliation

// Code identifies a line validation failure
type Code string

const (
	CodeMissingAmount  Code = "MISSING_AMOUNT"
	CodeExceedsOrdered Code = "EXCEEDS_ORDERED"
	CodeMissingUnit    Code = "MISSING_UNIT"
	CodeInvalidCost    Code = "INVALID_COST"
)

// ValidationError is a field-scoped problem on one line. It is data, not a Go error.
type ValidationError struct {
	Code    Code   `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Blocking reports whether the error prevents posting. Over-fulfilment is only flagged.
func (e ValidationError) Blocking() bool {
	return e.Code != CodeExceedsOrdered
}

// ValidateLine returns every problem on the line in a fixed order: amount, ordered baseline,
// unit, cost. It never fails.
func ValidateLine(item LineItem) []ValidationError {
	var errs []ValidationError
	amountField := item.TrackingMode.AmountField()
	active := ActiveAmount(item)

	if !active.IsPositive() {
		errs = append(errs, ValidationError{
			Code:    CodeMissingAmount,
			Field:   amountField,
			Message: "enter a " + amountField + " greater than zero",
		})
	}
	if active.GreaterThan(item.Ordered) {
		errs = append(errs, ValidationError{
			Code:    CodeExceedsOrdered,
			Field:   amountField,
			Message: amountField + " exceeds the ordered " + item.Ordered.String(),
		})
	}
	if item.UnitRef == "" {
		errs = append(errs, ValidationError{
			Code:    CodeMissingUnit,
			Field:   "unitRef",
			Message: "select a unit",
		})
	}
	if !item.UnitCost.IsPositive() {
		errs = append(errs, ValidationError{
			Code:    CodeInvalidCost,
			Field:   "unitCost",
			Message: "enter a unit cost greater than zero",
		})
	}

	return errs
}

// HasBlocking reports whether any error other than EXCEEDS_ORDERED is present
func HasBlocking(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Blocking() {
			return true
		}
	}
	return false
}

// Without returns errs minus the given code
func Without(errs []ValidationError, code Code) []ValidationError {
	var out []ValidationError
	for _, e := range errs {
		if e.Code != code {
			out = append(out, e)
		}
	}
	return out
}
