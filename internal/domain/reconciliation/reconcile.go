package reconciliation

import "github.com/shopspring/decimal"

// Fulfillments maps a line Ref to the amount already fulfilled against it, for example the
// amount already returned from a goods receipt
type Fulfillments map[string]decimal.Decimal

// LineResult is the derived view of one line
type LineResult struct {
	Ref          string            `json:"ref"`
	TrackingMode TrackingMode      `json:"trackingMode"`
	Active       decimal.Decimal   `json:"active"`
	Baseline     decimal.Decimal   `json:"baseline"`
	Outstanding  decimal.Decimal   `json:"outstanding"`
	LineTotal    decimal.Decimal   `json:"lineTotal"`
	Errors       []ValidationError `json:"errors"`
}

// Result holds per-line results and the totals over all aggregated lines
type Result struct {
	Lines      []LineResult    `json:"lines"`
	Summary    Summary         `json:"summary"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	Blocking   bool            `json:"blocking"`
}

// Baseline returns Ordered minus the prior fulfilment for the line, floored at zero
func Baseline(item LineItem, prior Fulfillments) decimal.Decimal {
	baseline := item.Ordered.Sub(prior[item.Ref])
	if baseline.IsNegative() {
		return decimal.Zero
	}
	return baseline
}

// Reconcile validates and totals items against baselines reduced by prior fulfilments.
// Lines without a Ref are unselected rows and are skipped. items is not modified.
func Reconcile(items []LineItem, prior Fulfillments) Result {
	adjusted := make([]LineItem, 0, len(items))
	result := Result{Lines: make([]LineResult, 0, len(items))}

	for _, item := range items {
		if item.Ref == "" {
			continue
		}
		item.Ordered = Baseline(item, prior)
		adjusted = append(adjusted, item)

		active := ActiveAmount(item)
		errs := ValidateLine(item)
		if errs == nil {
			errs = []ValidationError{}
		}
		if HasBlocking(errs) {
			result.Blocking = true
		}

		result.Lines = append(result.Lines, LineResult{
			Ref:          item.Ref,
			TrackingMode: item.TrackingMode,
			Active:       active,
			Baseline:     item.Ordered,
			Outstanding:  item.Ordered.Sub(active),
			LineTotal:    LineTotal(item),
			Errors:       errs,
		})
	}

	result.Summary = Aggregate(adjusted)
	result.GrandTotal = GrandTotal(adjusted)
	return result
}
