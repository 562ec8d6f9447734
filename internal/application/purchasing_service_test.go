package application

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	apperrors "github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/errors"
)

func requireAppError(t *testing.T, err error, status int, code string) *apperrors.AppError {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.HTTPStatus)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestPurchasingService_CreatePurchaseOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	po, err := f.purchasing.CreatePurchaseOrder(ctx, CreatePurchaseOrderCommand{Header: testHeader(), Lines: testOrderLines()})
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderStatusDraft, po.Status)
	assert.Equal(t, 1, f.tx.runs)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DocumentsCreated.WithLabelValues("test", DocumentPurchaseOrder)))

	stored, err := f.orders.FindByID(ctx, po.PurchaseOrderID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, po.OrderNumber, stored.OrderNumber)

	active := f.openOrder(t)
	assert.Equal(t, domain.PurchaseOrderStatusOpen, active.Status)
}

func TestPurchasingService_CreatePurchaseOrder_Invalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.purchasing.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderCommand{Header: testHeader()})
	requireAppError(t, err, http.StatusBadRequest, apperrors.CodeValidationError)
	assert.Zero(t, f.orders.saves)
}

func TestPurchasingService_CreatePurchaseOrder_SaveFails(t *testing.T) {
	f := newFixture(t)
	f.orders.saveErr = errStore

	_, err := f.purchasing.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderCommand{Header: testHeader(), Lines: testOrderLines()})
	appErr := requireAppError(t, err, http.StatusInternalServerError, apperrors.CodeInternalError)
	assert.ErrorIs(t, appErr, errStore)
}

func TestPurchasingService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	po, err := f.purchasing.CreatePurchaseOrder(ctx, CreatePurchaseOrderCommand{Header: testHeader(), Lines: testOrderLines()})
	require.NoError(t, err)

	header := testHeader()
	header.Remarks = "wedding season"
	updated, err := f.purchasing.UpdatePurchaseOrderHeader(ctx, UpdateHeaderCommand{DocumentID: po.PurchaseOrderID, Header: header})
	require.NoError(t, err)
	assert.Equal(t, "wedding season", updated.Header.Remarks)

	confirmed, err := f.purchasing.ConfirmPurchaseOrder(ctx, po.PurchaseOrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderStatusOpen, confirmed.Status)

	_, err = f.purchasing.ConfirmPurchaseOrder(ctx, po.PurchaseOrderID)
	requireAppError(t, err, http.StatusConflict, apperrors.CodeInvalidState)

	_, err = f.purchasing.UpdatePurchaseOrderHeader(ctx, UpdateHeaderCommand{DocumentID: po.PurchaseOrderID, Header: header})
	requireAppError(t, err, http.StatusConflict, apperrors.CodeInvalidState)

	cancelled, err := f.purchasing.CancelPurchaseOrder(ctx, CancelDocumentCommand{DocumentID: po.PurchaseOrderID, Reason: "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DocumentsPosted.WithLabelValues("test", DocumentPurchaseOrder, OutcomeCancelled)))
}

func TestPurchasingService_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.purchasing.GetPurchaseOrder(ctx, "missing")
	requireAppError(t, err, http.StatusNotFound, apperrors.CodeNotFound)

	_, err = f.purchasing.ConfirmPurchaseOrder(ctx, "missing")
	requireAppError(t, err, http.StatusNotFound, apperrors.CodeNotFound)

	_, err = f.purchasing.GetOrderReconciliation(ctx, "missing")
	requireAppError(t, err, http.StatusNotFound, apperrors.CodeNotFound)
}

func TestPurchasingService_ListPurchaseOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.openOrder(t)
	}
	_, err := f.purchasing.CreatePurchaseOrder(ctx, CreatePurchaseOrderCommand{Header: testHeader(), Lines: testOrderLines()})
	require.NoError(t, err)

	open := string(domain.PurchaseOrderStatusOpen)
	page, err := f.purchasing.ListPurchaseOrders(ctx, ListDocumentsQuery{
		Filter:     domain.DocumentFilter{Status: &open},
		Pagination: domain.Pagination{Page: 1, PageSize: 2},
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.TotalItems)
	assert.Equal(t, int64(2), page.TotalPages())
}

func TestPurchasingService_GetOrderReconciliation(t *testing.T) {
	f := newFixture(t)
	si := f.postedStockIn(t)

	view, err := f.purchasing.GetOrderReconciliation(context.Background(), si.PurchaseOrderID)
	require.NoError(t, err)

	assert.Equal(t, domain.PurchaseOrderStatusPartiallyReceived, view.Status)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, "4", view.Lines[0].Received.String())
	assert.Equal(t, "6", view.Lines[0].Remaining.String())
	assert.Equal(t, "40", view.Lines[0].CompletionPct.String())
	assert.Equal(t, "40.14", view.Summary.CompletionPct.String())
	require.Len(t, view.StockIns, 1)
	assert.Equal(t, si.GRNNumber, view.StockIns[0].GRNNumber)
	assert.Equal(t, domain.PostingStatusPosted, view.StockIns[0].Status)
}
