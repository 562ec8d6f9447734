package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
)

func TestNewPurchaseOrder(t *testing.T) {
	po, err := NewPurchaseOrder(testHeader(), testOrderLines())
	require.NoError(t, err)

	assert.NotEmpty(t, po.PurchaseOrderID)
	assert.True(t, strings.HasPrefix(po.OrderNumber, "PO-"))
	assert.Equal(t, PurchaseOrderStatusDraft, po.Status)
	assert.Len(t, po.Lines, 2)

	events := po.GetDomainEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(*PurchaseOrderCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, EventPurchaseOrderCreated, created.EventType())
	assert.Equal(t, 2, created.LineCount)
	assertDecimal(t, "35.5", created.TotalOrdered)
	assertDecimal(t, "154000", po.OrderValue())
}

func TestNewPurchaseOrder_Validation(t *testing.T) {
	tests := []struct {
		name   string
		header func(*DocumentHeader)
		lines  func([]OrderLine) []OrderLine
		want   error
	}{
		{"no lines", nil, func([]OrderLine) []OrderLine { return nil }, ErrNoOrderLines},
		{"missing party", func(h *DocumentHeader) { h.PartyRef = "" }, nil, ErrPartyRequired},
		{"blank ref", nil, func(l []OrderLine) []OrderLine { l[0].Ref = " "; return l }, ErrLineRefRequired},
		{"zero ordered", nil, func(l []OrderLine) []OrderLine { l[1].Ordered = dec("0"); return l }, ErrInvalidOrderedAmount},
		{"unset mode", nil, func(l []OrderLine) []OrderLine { l[0].TrackingMode = reconciliation.ModeUnset; return l }, ErrTrackingModeRequired},
		{"duplicate refs", nil, func(l []OrderLine) []OrderLine { l[1].Ref = "R1"; return l }, ErrDuplicateLineRef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := testHeader()
			if tt.header != nil {
				tt.header(&header)
			}
			lines := testOrderLines()
			if tt.lines != nil {
				lines = tt.lines(lines)
			}

			po, err := NewPurchaseOrder(header, lines)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, po)
		})
	}
}

func TestPurchaseOrder_DraftEditing(t *testing.T) {
	po, err := NewPurchaseOrder(testHeader(), testOrderLines())
	require.NoError(t, err)

	extra := OrderLine{Ref: "R3", TrackingMode: reconciliation.ModeWeight, UnitRef: "ct", Ordered: dec("2.5"), UnitCost: dec("45000")}
	require.NoError(t, po.AddLine(extra))
	assert.ErrorIs(t, po.AddLine(extra), ErrDuplicateLineRef)

	extra.Ordered = dec("3")
	require.NoError(t, po.UpdateLine(extra))
	line, ok := po.Line("R3")
	require.True(t, ok)
	assertDecimal(t, "3", line.Ordered)

	assert.ErrorIs(t, po.UpdateLine(OrderLine{Ref: "R9"}), ErrLineNotFound)
	require.NoError(t, po.RemoveLine("R3"))
	require.NoError(t, po.RemoveLine("R2"))
	assert.ErrorIs(t, po.RemoveLine("R1"), ErrNoOrderLines)

	header := testHeader()
	header.Remarks = "festive stock"
	require.NoError(t, po.SetHeader(header))
	assert.Equal(t, "festive stock", po.Header.Remarks)

	require.NoError(t, po.Confirm())
	assert.ErrorIs(t, po.AddLine(OrderLine{Ref: "R4"}), ErrDocumentNotEditable)
	assert.ErrorIs(t, po.SetHeader(header), ErrDocumentNotEditable)
	assert.ErrorIs(t, po.RemoveLine("R1"), ErrDocumentNotEditable)
}

func TestPurchaseOrder_Confirm(t *testing.T) {
	po, err := NewPurchaseOrder(testHeader(), testOrderLines())
	require.NoError(t, err)
	po.ClearDomainEvents()

	require.NoError(t, po.Confirm())
	assert.Equal(t, PurchaseOrderStatusOpen, po.Status)
	assert.NotNil(t, po.ConfirmedAt)
	require.Len(t, po.GetDomainEvents(), 1)
	assert.Equal(t, EventPurchaseOrderConfirmed, po.GetDomainEvents()[0].EventType())

	assert.ErrorIs(t, po.Confirm(), ErrInvalidStatusTransition)
}

func TestPurchaseOrder_ApplyReceipt(t *testing.T) {
	t.Run("partial then full", func(t *testing.T) {
		po := openOrder(t)

		require.NoError(t, po.ApplyReceipt("SI-1", reconciliation.Fulfillments{"R1": dec("4")}))
		assert.Equal(t, PurchaseOrderStatusPartiallyReceived, po.Status)
		line, _ := po.Line("R1")
		assertDecimal(t, "4", line.Received)
		assertDecimal(t, "6", line.Remaining())

		summary := po.Reconciliation()
		assertDecimal(t, "35.5", summary.TotalOrdered)
		assertDecimal(t, "4", summary.TotalFulfilled)
		assertDecimal(t, "11.27", summary.CompletionPct)

		seeds := po.SeedLines()
		require.Len(t, seeds, 2)
		assertDecimal(t, "6", seeds[0].Ordered)
		assertDecimal(t, "25.5", seeds[1].Ordered)
		assert.True(t, seeds[0].Count.IsZero())

		require.NoError(t, po.ApplyReceipt("SI-2", reconciliation.Fulfillments{"R1": dec("6"), "R2": dec("25.5")}))
		assert.Equal(t, PurchaseOrderStatusReceived, po.Status)
		assert.NotNil(t, po.CompletedAt)
		assertDecimal(t, "100", po.Reconciliation().CompletionPct)

		events := po.GetDomainEvents()
		require.Len(t, events, 2)
		applied := events[1].(*PurchaseOrderReceiptAppliedEvent)
		assert.Equal(t, "SI-2", applied.StockInID)
		assert.Equal(t, string(PurchaseOrderStatusReceived), applied.Status)

		assert.ErrorIs(t, po.ApplyReceipt("SI-3", reconciliation.Fulfillments{"R1": dec("1")}), ErrOrderNotReceivable)
	})

	t.Run("over receipt floors remaining", func(t *testing.T) {
		po := openOrder(t)

		require.NoError(t, po.ApplyReceipt("SI-1", reconciliation.Fulfillments{"R1": dec("12"), "R2": dec("25.5")}))
		assert.Equal(t, PurchaseOrderStatusReceived, po.Status)
		line, _ := po.Line("R1")
		assertDecimal(t, "0", line.Remaining())
	})

	t.Run("unknown line leaves order untouched", func(t *testing.T) {
		po := openOrder(t)

		err := po.ApplyReceipt("SI-1", reconciliation.Fulfillments{"R1": dec("1"), "R9": dec("1")})
		assert.ErrorIs(t, err, ErrLineNotFound)
		assert.Equal(t, PurchaseOrderStatusOpen, po.Status)
		line, _ := po.Line("R1")
		assert.True(t, line.Received.IsZero())
	})

	t.Run("draft order", func(t *testing.T) {
		po, err := NewPurchaseOrder(testHeader(), testOrderLines())
		require.NoError(t, err)
		assert.ErrorIs(t, po.ApplyReceipt("SI-1", reconciliation.Fulfillments{"R1": dec("1")}), ErrOrderNotReceivable)
	})
}

func TestPurchaseOrder_Cancel(t *testing.T) {
	po := openOrder(t)
	require.NoError(t, po.Cancel("supplier out of stock"))
	assert.Equal(t, PurchaseOrderStatusCancelled, po.Status)
	assert.Equal(t, "supplier out of stock", po.CancelReason)
	assert.NotNil(t, po.CancelledAt)
	assert.ErrorIs(t, po.Cancel("again"), ErrInvalidStatusTransition)

	received := openOrder(t)
	require.NoError(t, received.ApplyReceipt("SI-1", reconciliation.Fulfillments{"R1": dec("1")}))
	assert.ErrorIs(t, received.Cancel("late"), ErrInvalidStatusTransition)
}

func TestPurchaseOrderStatus(t *testing.T) {
	assert.True(t, PurchaseOrderStatusOpen.Receivable())
	assert.True(t, PurchaseOrderStatusPartiallyReceived.Receivable())
	assert.False(t, PurchaseOrderStatusDraft.Receivable())
	assert.False(t, PurchaseOrderStatusReceived.Receivable())
	assert.False(t, PurchaseOrderStatus("closed").IsValid())
	assert.False(t, PurchaseOrderStatusReceived.CanTransitionTo(PurchaseOrderStatusCancelled))
}
