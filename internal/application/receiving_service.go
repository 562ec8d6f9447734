package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/metrics"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/mongodb"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/tracing"
)

// ReceivingService handles goods receipt (GRN) operations
type ReceivingService struct {
	stockIns domain.StockInRepository
	orders   domain.PurchaseOrderRepository
	tx       mongodb.TxRunner
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

// NewReceivingService creates a new ReceivingService
func NewReceivingService(
	stockIns domain.StockInRepository,
	orders domain.PurchaseOrderRepository,
	tx mongodb.TxRunner,
	logger *logging.Logger,
	m *metrics.Metrics,
) *ReceivingService {
	return &ReceivingService{
		stockIns: stockIns,
		orders:   orders,
		tx:       tx,
		logger:   logger.WithComponent("receiving"),
		metrics:  m,
	}
}

// CreateStockIn drafts a GRN against a purchase order, or a manual GRN when no order is given
func (s *ReceivingService) CreateStockIn(ctx context.Context, cmd CreateStockInCommand) (*domain.StockIn, error) {
	var si *domain.StockIn
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		created, err := s.newStockIn(ctx, cmd)
		if err != nil {
			return err
		}
		si = created
		return s.stockIns.Save(ctx, created)
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.metrics.RecordDocumentCreated(DocumentStockIn)
	s.logger.WithContext(ctx).Info("Created stock-in",
		"stockInId", si.StockInID,
		"grnNumber", si.GRNNumber,
		"purchaseOrderId", si.PurchaseOrderID,
		"manual", si.IsManual(),
		"lines", len(si.Lines),
	)

	return si, nil
}

func (s *ReceivingService) newStockIn(ctx context.Context, cmd CreateStockInCommand) (*domain.StockIn, error) {
	if cmd.PurchaseOrderID == "" {
		si, err := domain.NewManualStockIn(cmd.Header, cmd.SupplierInvoiceRef)
		if err != nil {
			return nil, err
		}
		for _, line := range cmd.ManualLines {
			if err := si.AddManualLine(line.Ref, line.Description, line.TrackingMode, line.UnitRef, line.UnitCost); err != nil {
				return nil, err
			}
		}
		return si, nil
	}

	po, err := s.orders.FindByID(ctx, cmd.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrPurchaseOrderNotFound
	}
	return domain.NewStockInFromOrder(po, cmd.Header, cmd.SupplierInvoiceRef)
}

// UpdateStockInHeader replaces the header of a draft GRN
func (s *ReceivingService) UpdateStockInHeader(ctx context.Context, cmd UpdateHeaderCommand) (*domain.StockIn, error) {
	return s.mutate(ctx, cmd.DocumentID, func(si *domain.StockIn) error {
		return si.SetHeader(cmd.Header, cmd.SupplierInvoiceRef)
	}, "Updated stock-in header")
}

// UpdateStockInLine applies discrete changes to one GRN line
func (s *ReceivingService) UpdateStockInLine(ctx context.Context, cmd UpdateLineCommand) (*domain.StockIn, error) {
	return s.mutate(ctx, cmd.DocumentID, func(si *domain.StockIn) error {
		return applyLineUpdate(si, cmd)
	}, "Updated stock-in line", "ref", cmd.Ref)
}

// AddStockInLine appends a line to a draft manual GRN
func (s *ReceivingService) AddStockInLine(ctx context.Context, stockInID string, line ManualLine) (*domain.StockIn, error) {
	return s.mutate(ctx, stockInID, func(si *domain.StockIn) error {
		return si.AddManualLine(line.Ref, line.Description, line.TrackingMode, line.UnitRef, line.UnitCost)
	}, "Added stock-in line", "ref", line.Ref)
}

// CancelStockIn cancels a draft GRN
func (s *ReceivingService) CancelStockIn(ctx context.Context, cmd CancelDocumentCommand) (*domain.StockIn, error) {
	si, err := s.mutate(ctx, cmd.DocumentID, func(si *domain.StockIn) error {
		return si.Cancel(cmd.Reason)
	}, "Cancelled stock-in")
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDocumentPosted(DocumentStockIn, OutcomeCancelled)
	return si, nil
}

// PostStockIn posts a GRN and applies the received amounts to its purchase order in the
// same unit of work
func (s *ReceivingService) PostStockIn(ctx context.Context, stockInID string) (*domain.StockIn, error) {
	var (
		si *domain.StockIn
		po *domain.PurchaseOrder
	)
	err := tracing.Run(ctx, "stock_in.post", func(ctx context.Context) error {
		return s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
			found, err := s.find(ctx, stockInID)
			if err != nil {
				return err
			}
			received, err := found.Post()
			if err != nil {
				return err
			}

			if !found.IsManual() {
				order, err := s.orders.FindByID(ctx, found.PurchaseOrderID)
				if err != nil {
					return err
				}
				if order == nil {
					return domain.ErrPurchaseOrderNotFound
				}
				if err := order.ApplyReceipt(found.StockInID, received); err != nil {
					return err
				}
				if err := s.orders.Save(ctx, order); err != nil {
					return err
				}
				po = order
			}

			si = found
			return s.stockIns.Save(ctx, found)
		})
	}, attribute.String("stock_in.id", stockInID))
	if err != nil {
		recordRejected(s.metrics, DocumentStockIn, err)
		return nil, mapError(err)
	}

	s.metrics.RecordDocumentPosted(DocumentStockIn, OutcomePosted)
	for range si.OverReceived() {
		s.metrics.RecordReconciliationFlag(DocumentStockIn, string(reconciliation.CodeExceedsOrdered))
	}
	recordFulfilled(s.metrics, DocumentStockIn, si.Items())
	if po != nil && po.Status == domain.PurchaseOrderStatusReceived {
		s.metrics.RecordDocumentPosted(DocumentPurchaseOrder, OutcomeReceived)
	}

	log := s.logger.WithContext(ctx)
	log.WithDocument(DocumentStockIn, si.StockInID).Info("Posted stock-in",
		"grnNumber", si.GRNNumber,
		"grandTotal", si.GrandTotal().String(),
		"overReceived", si.OverReceived(),
	)
	if po != nil {
		log.Info("Applied receipt to purchase order",
			"purchaseOrderId", po.PurchaseOrderID,
			"status", po.Status,
			"completionPct", po.Reconciliation().CompletionPct.String(),
		)
	}

	return si, nil
}

func (s *ReceivingService) mutate(ctx context.Context, stockInID string, fn func(*domain.StockIn) error, message string, fields ...any) (*domain.StockIn, error) {
	var si *domain.StockIn
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		found, err := s.find(ctx, stockInID)
		if err != nil {
			return err
		}
		if err := fn(found); err != nil {
			return err
		}
		si = found
		return s.stockIns.Save(ctx, found)
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.logger.WithContext(ctx).WithDocument(DocumentStockIn, si.StockInID).Info(message, append([]any{"status", si.Status}, fields...)...)
	return si, nil
}

func (s *ReceivingService) find(ctx context.Context, stockInID string) (*domain.StockIn, error) {
	si, err := s.stockIns.FindByID(ctx, stockInID)
	if err != nil {
		return nil, err
	}
	if si == nil {
		return nil, domain.ErrStockInNotFound
	}
	return si, nil
}

// GetStockIn retrieves a GRN
func (s *ReceivingService) GetStockIn(ctx context.Context, stockInID string) (*domain.StockIn, error) {
	si, err := s.find(ctx, stockInID)
	if err != nil {
		return nil, mapError(err)
	}
	return si, nil
}

// ListStockIns lists GRNs
func (s *ReceivingService) ListStockIns(ctx context.Context, query ListDocumentsQuery) (*Page[*domain.StockIn], error) {
	stockIns, err := s.stockIns.List(ctx, query.Filter, query.Pagination)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := s.stockIns.Count(ctx, query.Filter)
	if err != nil {
		return nil, mapError(err)
	}
	return &Page[*domain.StockIn]{Items: stockIns, TotalItems: total, Pagination: query.Pagination}, nil
}

// lineEditor is the set of discrete line updates shared by GRNs and returns
type lineEditor interface {
	SetLineCount(ref string, count decimal.Decimal) error
	SetLineWeight(ref string, weight decimal.Decimal) error
	SetLineUnitCost(ref string, unitCost decimal.Decimal) error
	SetLineUnit(ref, unitRef string) error
	ClearLine(ref string) error
	RemoveLine(ref string) error
}

func applyLineUpdate(doc lineEditor, cmd UpdateLineCommand) error {
	if cmd.Remove {
		return doc.RemoveLine(cmd.Ref)
	}
	if cmd.Clear {
		if err := doc.ClearLine(cmd.Ref); err != nil {
			return err
		}
	}
	if cmd.UnitRef != nil {
		if err := doc.SetLineUnit(cmd.Ref, *cmd.UnitRef); err != nil {
			return err
		}
	}
	if cmd.UnitCost != nil {
		if err := doc.SetLineUnitCost(cmd.Ref, *cmd.UnitCost); err != nil {
			return err
		}
	}
	if cmd.Count != nil {
		if err := doc.SetLineCount(cmd.Ref, *cmd.Count); err != nil {
			return err
		}
	}
	if cmd.Weight != nil {
		if err := doc.SetLineWeight(cmd.Ref, *cmd.Weight); err != nil {
			return err
		}
	}
	return nil
}

func recordRejected(m *metrics.Metrics, documentType string, err error) {
	var bve *domain.BlockingValidationError
	if !errors.As(err, &bve) {
		if errors.Is(err, domain.ErrReturnExceedsReceived) || errors.Is(err, domain.ErrNothingReceived) || errors.Is(err, domain.ErrNothingReturned) {
			m.RecordDocumentPosted(documentType, OutcomeRejected)
		}
		return
	}
	m.RecordDocumentPosted(documentType, OutcomeBlocked)
	for _, errs := range bve.Lines {
		for _, e := range errs {
			m.RecordReconciliationFlag(documentType, string(e.Code))
		}
	}
}

func recordFulfilled(m *metrics.Metrics, documentType string, items []reconciliation.LineItem) {
	for _, item := range items {
		if reconciliation.Aggregated(item) {
			m.AddFulfilledAmount(documentType, string(item.TrackingMode), reconciliation.ActiveAmount(item).InexactFloat64())
		}
	}
}
