package application

import (
	"context"
	"time"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/metrics"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/mongodb"
)

// PurchasingService handles purchase order operations
type PurchasingService struct {
	orders   domain.PurchaseOrderRepository
	stockIns domain.StockInRepository
	tx       mongodb.TxRunner
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

// NewPurchasingService creates a new PurchasingService
func NewPurchasingService(
	orders domain.PurchaseOrderRepository,
	stockIns domain.StockInRepository,
	tx mongodb.TxRunner,
	logger *logging.Logger,
	m *metrics.Metrics,
) *PurchasingService {
	return &PurchasingService{
		orders:   orders,
		stockIns: stockIns,
		tx:       tx,
		logger:   logger.WithComponent("purchasing"),
		metrics:  m,
	}
}

// CreatePurchaseOrder drafts a purchase order, confirming it straight away when asked
func (s *PurchasingService) CreatePurchaseOrder(ctx context.Context, cmd CreatePurchaseOrderCommand) (*domain.PurchaseOrder, error) {
	po, err := domain.NewPurchaseOrder(cmd.Header, cmd.Lines)
	if err != nil {
		return nil, mapError(err)
	}
	if cmd.Activate {
		if err := po.Confirm(); err != nil {
			return nil, mapError(err)
		}
	}

	if err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.orders.Save(ctx, po)
	}); err != nil {
		return nil, mapError(err)
	}

	s.metrics.RecordDocumentCreated(DocumentPurchaseOrder)
	s.logger.WithContext(ctx).Info("Created purchase order",
		"purchaseOrderId", po.PurchaseOrderID,
		"orderNumber", po.OrderNumber,
		"partyRef", po.Header.PartyRef,
		"lines", len(po.Lines),
		"status", po.Status,
	)

	return po, nil
}

// UpdatePurchaseOrderHeader replaces the header of a draft order
func (s *PurchasingService) UpdatePurchaseOrderHeader(ctx context.Context, cmd UpdateHeaderCommand) (*domain.PurchaseOrder, error) {
	return s.mutate(ctx, cmd.DocumentID, func(po *domain.PurchaseOrder) error {
		return po.SetHeader(cmd.Header)
	}, "Updated purchase order header")
}

// ConfirmPurchaseOrder opens a draft order for receiving
func (s *PurchasingService) ConfirmPurchaseOrder(ctx context.Context, purchaseOrderID string) (*domain.PurchaseOrder, error) {
	return s.mutate(ctx, purchaseOrderID, func(po *domain.PurchaseOrder) error {
		return po.Confirm()
	}, "Confirmed purchase order")
}

// CancelPurchaseOrder cancels a draft or open order
func (s *PurchasingService) CancelPurchaseOrder(ctx context.Context, cmd CancelDocumentCommand) (*domain.PurchaseOrder, error) {
	po, err := s.mutate(ctx, cmd.DocumentID, func(po *domain.PurchaseOrder) error {
		return po.Cancel(cmd.Reason)
	}, "Cancelled purchase order")
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDocumentPosted(DocumentPurchaseOrder, OutcomeCancelled)
	return po, nil
}

func (s *PurchasingService) mutate(ctx context.Context, purchaseOrderID string, fn func(*domain.PurchaseOrder) error, message string) (*domain.PurchaseOrder, error) {
	var po *domain.PurchaseOrder
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		found, err := s.find(ctx, purchaseOrderID)
		if err != nil {
			return err
		}
		if err := fn(found); err != nil {
			return err
		}
		po = found
		return s.orders.Save(ctx, found)
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.logger.WithContext(ctx).WithDocument(DocumentPurchaseOrder, po.PurchaseOrderID).Info(message, "status", po.Status)
	return po, nil
}

func (s *PurchasingService) find(ctx context.Context, purchaseOrderID string) (*domain.PurchaseOrder, error) {
	po, err := s.orders.FindByID(ctx, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrPurchaseOrderNotFound
	}
	return po, nil
}

// GetPurchaseOrder retrieves a purchase order
func (s *PurchasingService) GetPurchaseOrder(ctx context.Context, purchaseOrderID string) (*domain.PurchaseOrder, error) {
	po, err := s.find(ctx, purchaseOrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return po, nil
}

// ListPurchaseOrders lists purchase orders
func (s *PurchasingService) ListPurchaseOrders(ctx context.Context, query ListDocumentsQuery) (*Page[*domain.PurchaseOrder], error) {
	orders, err := s.orders.List(ctx, query.Filter, query.Pagination)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := s.orders.Count(ctx, query.Filter)
	if err != nil {
		return nil, mapError(err)
	}
	return &Page[*domain.PurchaseOrder]{Items: orders, TotalItems: total, Pagination: query.Pagination}, nil
}

// GetOrderReconciliation builds the ordered against received view of an order
func (s *PurchasingService) GetOrderReconciliation(ctx context.Context, purchaseOrderID string) (*OrderReconciliation, error) {
	po, err := s.find(ctx, purchaseOrderID)
	if err != nil {
		return nil, mapError(err)
	}
	stockIns, err := s.stockIns.FindByPurchaseOrderID(ctx, purchaseOrderID)
	if err != nil {
		return nil, mapError(err)
	}

	view := &OrderReconciliation{
		PurchaseOrderID: po.PurchaseOrderID,
		OrderNumber:     po.OrderNumber,
		Status:          po.Status,
		Lines:           make([]OrderLineProgress, 0, len(po.Lines)),
		Summary:         po.Reconciliation(),
		StockIns:        make([]StockInRef, 0, len(stockIns)),
		GeneratedAt:     time.Now().UTC(),
	}
	for _, line := range po.Lines {
		view.Lines = append(view.Lines, OrderLineProgress{
			Ref:           line.Ref,
			Description:   line.Description,
			TrackingMode:  line.TrackingMode,
			UnitRef:       line.UnitRef,
			Ordered:       line.Ordered,
			Received:      line.Received,
			Remaining:     line.Remaining(),
			CompletionPct: reconciliation.CompletionPct(line.Ordered, line.Received),
		})
	}
	for _, si := range stockIns {
		view.StockIns = append(view.StockIns, StockInRef{
			StockInID: si.StockInID,
			GRNNumber: si.GRNNumber,
			Status:    si.Status,
			PostedAt:  si.PostedAt,
		})
	}
	return view, nil
}
