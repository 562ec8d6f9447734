// Package reconciliation computes received or returned amounts against an ordered baseline.
//
// Every function here is pure: no I/O, no logging and no shared state. A line is measured on
// exactly one axis, count or weight, selected by its tracking mode.
package reconciliation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TrackingMode selects which amount field of a line is active
type TrackingMode string

const (
	ModeUnset  TrackingMode = ""
	ModeCount  TrackingMode = "COUNT"
	ModeWeight TrackingMode = "WEIGHT"
)

// ParseTrackingMode parses a mode case-insensitively. Unknown values yield ModeUnset.
func ParseTrackingMode(raw string) TrackingMode {
	switch TrackingMode(strings.ToUpper(strings.TrimSpace(raw))) {
	case ModeCount:
		return ModeCount
	case ModeWeight:
		return ModeWeight
	default:
		return ModeUnset
	}
}

// IsSet reports whether the mode is COUNT or WEIGHT
func (m TrackingMode) IsSet() bool {
	return m == ModeCount || m == ModeWeight
}

// AmountField is the JSON field name of the active amount
func (m TrackingMode) AmountField() string {
	if m == ModeWeight {
		return "weight"
	}
	return "count"
}

// LineItem is one reconciled line. Count is active in COUNT mode and Weight in WEIGHT mode;
// the fulfilled amount means received on a goods receipt and returned on a return.
type LineItem struct {
	Ref          string          `bson:"ref" json:"ref"`
	TrackingMode TrackingMode    `bson:"trackingMode" json:"trackingMode"`
	UnitRef      string          `bson:"unitRef,omitempty" json:"unitRef,omitempty"`
	Ordered      decimal.Decimal `bson:"ordered" json:"ordered"`
	Count        decimal.Decimal `bson:"count" json:"count"`
	Weight       decimal.Decimal `bson:"weight" json:"weight"`
	UnitCost     decimal.Decimal `bson:"unitCost" json:"unitCost"`
}

// Summary aggregates ordered against fulfilled amounts
type Summary struct {
	TotalOrdered   decimal.Decimal `json:"totalOrdered"`
	TotalFulfilled decimal.Decimal `json:"totalFulfilled"`
	Pending        decimal.Decimal `json:"pending"`
	CompletionPct  decimal.Decimal `json:"completionPct"`
}

// Input bounds. Amounts keep at most AmountScale fractional digits and stay below
// 10^maxAmountDigits in magnitude, so any line total fits a Decimal128.
const (
	AmountScale       = 4
	MoneyScale        = 2
	maxAmountLength   = 64
	maxAmountExponent = 32
	maxAmountDigits   = 12
)

var maxAmount = decimal.New(1, maxAmountDigits)

// ParseAmount parses form input leniently. Empty, blank and non-numeric text, NaN included,
// yield zero, as do inputs longer than 64 characters, exponents beyond +/-32 and magnitudes
// of 10^12 or more. Accepted values are rounded to AmountScale places.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxAmountLength {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	// exponent is bounded before any arithmetic touches the value
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return decimal.Zero
	}
	if d.Abs().Cmp(maxAmount) >= 0 {
		return decimal.Zero
	}
	return d.Round(AmountScale)
}

// ActiveAmount returns the fulfilled amount on the line's tracking axis, or zero when the
// mode is unset. The inactive field is ignored.
func ActiveAmount(item LineItem) decimal.Decimal {
	switch item.TrackingMode {
	case ModeCount:
		return item.Count
	case ModeWeight:
		return item.Weight
	default:
		return decimal.Zero
	}
}

// LineTotal returns ActiveAmount x UnitCost, or zero when either operand is not positive.
func LineTotal(item LineItem) decimal.Decimal {
	amount := ActiveAmount(item)
	if !amount.IsPositive() || !item.UnitCost.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(item.UnitCost)
}

// Aggregated reports whether a line counts toward Aggregate and GrandTotal: it has a
// reference and a tracking mode.
func Aggregated(item LineItem) bool {
	return item.Ref != "" && item.TrackingMode.IsSet()
}

// Aggregate sums ordered and active amounts over aggregated lines. Pending is not clamped and
// CompletionPct is rounded to two places, zero when nothing was ordered.
func Aggregate(items []LineItem) Summary {
	ordered, fulfilled := decimal.Zero, decimal.Zero
	for _, item := range items {
		if !Aggregated(item) {
			continue
		}
		ordered = ordered.Add(item.Ordered)
		fulfilled = fulfilled.Add(ActiveAmount(item))
	}

	return Summary{
		TotalOrdered:   ordered,
		TotalFulfilled: fulfilled,
		Pending:        ordered.Sub(fulfilled),
		CompletionPct:  CompletionPct(ordered, fulfilled),
	}
}

// CompletionPct returns fulfilled / ordered x 100 rounded to two places, or zero when
// ordered is zero
func CompletionPct(ordered, fulfilled decimal.Decimal) decimal.Decimal {
	if ordered.IsZero() {
		return decimal.Zero
	}
	return fulfilled.Mul(decimal.NewFromInt(100)).DivRound(ordered, 2)
}

// GrandTotal sums LineTotal over aggregated lines, rounded to MoneyScale places
func GrandTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if Aggregated(item) {
			total = total.Add(LineTotal(item))
		}
	}
	return total.Round(MoneyScale)
}
