package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func testHeader() DocumentHeader {
	return DocumentHeader{
		DocumentDate: time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		PartyRef:     "SUP-001",
		BranchRef:    "BR-MAIN",
	}
}

func testOrderLines() []OrderLine {
	return []OrderLine{
		{Ref: "R1", Description: "Gold ring", TrackingMode: reconciliation.ModeCount, UnitRef: "pcs", Ordered: dec("10"), UnitCost: dec("100")},
		{Ref: "R2", Description: "22k chain", TrackingMode: reconciliation.ModeWeight, UnitRef: "gm", Ordered: dec("25.5"), UnitCost: dec("6000")},
	}
}

func openOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	po, err := NewPurchaseOrder(testHeader(), testOrderLines())
	require.NoError(t, err)
	require.NoError(t, po.Confirm())
	po.ClearDomainEvents()
	return po
}

// postedStockIn receives 4 pieces of R1 and 10.25 gm of R2 against an open order
func postedStockIn(t *testing.T) *StockIn {
	t.Helper()
	si, err := NewStockInFromOrder(openOrder(t), DocumentHeader{DocumentDate: testHeader().DocumentDate}, "INV-77")
	require.NoError(t, err)
	require.NoError(t, si.SetLineCount("R1", dec("4")))
	require.NoError(t, si.SetLineWeight("R2", dec("10.25")))
	_, err = si.Post()
	require.NoError(t, err)
	si.ClearDomainEvents()
	return si
}
