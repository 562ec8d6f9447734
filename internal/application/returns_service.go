package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/metrics"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/mongodb"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/tracing"
)

// ReturnsService handles purchase return operations
type ReturnsService struct {
	returns  domain.PurchaseReturnRepository
	stockIns domain.StockInRepository
	tx       mongodb.TxRunner
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

// NewReturnsService creates a new ReturnsService
func NewReturnsService(
	returns domain.PurchaseReturnRepository,
	stockIns domain.StockInRepository,
	tx mongodb.TxRunner,
	logger *logging.Logger,
	m *metrics.Metrics,
) *ReturnsService {
	return &ReturnsService{
		returns:  returns,
		stockIns: stockIns,
		tx:       tx,
		logger:   logger.WithComponent("returns"),
		metrics:  m,
	}
}

// CreatePurchaseReturn drafts a return against a posted GRN
func (s *ReturnsService) CreatePurchaseReturn(ctx context.Context, cmd CreatePurchaseReturnCommand) (*domain.PurchaseReturn, error) {
	var pr *domain.PurchaseReturn
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		si, err := s.findStockIn(ctx, cmd.StockInID)
		if err != nil {
			return err
		}
		created, err := domain.NewPurchaseReturn(si, cmd.Header, cmd.Reason)
		if err != nil {
			return err
		}
		pr = created
		return s.returns.Save(ctx, created)
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.metrics.RecordDocumentCreated(DocumentPurchaseReturn)
	s.logger.WithContext(ctx).Info("Created purchase return",
		"returnId", pr.ReturnID,
		"returnNumber", pr.ReturnNumber,
		"stockInId", pr.StockInID,
		"lines", len(pr.Lines),
	)

	return pr, nil
}

// UpdatePurchaseReturnHeader replaces the header and reason of a draft return
func (s *ReturnsService) UpdatePurchaseReturnHeader(ctx context.Context, cmd UpdateHeaderCommand) (*domain.PurchaseReturn, error) {
	return s.mutate(ctx, cmd.DocumentID, func(pr *domain.PurchaseReturn) error {
		return pr.SetHeader(cmd.Header, cmd.Reason)
	}, "Updated purchase return header")
}

// UpdateReturnLine applies discrete changes to one return line
func (s *ReturnsService) UpdateReturnLine(ctx context.Context, cmd UpdateLineCommand) (*domain.PurchaseReturn, error) {
	return s.mutate(ctx, cmd.DocumentID, func(pr *domain.PurchaseReturn) error {
		return applyLineUpdate(pr, cmd)
	}, "Updated purchase return line", "ref", cmd.Ref)
}

// CancelPurchaseReturn cancels a draft return
func (s *ReturnsService) CancelPurchaseReturn(ctx context.Context, cmd CancelDocumentCommand) (*domain.PurchaseReturn, error) {
	pr, err := s.mutate(ctx, cmd.DocumentID, func(pr *domain.PurchaseReturn) error {
		return pr.Cancel(cmd.Reason)
	}, "Cancelled purchase return")
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDocumentPosted(DocumentPurchaseReturn, OutcomeCancelled)
	return pr, nil
}

// PostPurchaseReturn posts a return and adds the returned amounts to its GRN in the same
// unit of work
func (s *ReturnsService) PostPurchaseReturn(ctx context.Context, returnID string) (*domain.PurchaseReturn, error) {
	var pr *domain.PurchaseReturn
	err := tracing.Run(ctx, "purchase_return.post", func(ctx context.Context) error {
		return s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
			found, err := s.find(ctx, returnID)
			if err != nil {
				return err
			}
			returned, err := found.Post()
			if err != nil {
				return err
			}

			si, err := s.findStockIn(ctx, found.StockInID)
			if err != nil {
				return err
			}
			if err := si.ApplyReturn(returned); err != nil {
				return err
			}
			if err := s.stockIns.Save(ctx, si); err != nil {
				return err
			}

			pr = found
			return s.returns.Save(ctx, found)
		})
	}, attribute.String("purchase_return.id", returnID))
	if err != nil {
		recordRejected(s.metrics, DocumentPurchaseReturn, err)
		return nil, mapError(err)
	}

	s.metrics.RecordDocumentPosted(DocumentPurchaseReturn, OutcomePosted)
	recordFulfilled(s.metrics, DocumentPurchaseReturn, pr.Items())
	s.logger.WithContext(ctx).Info("Posted purchase return",
		"returnId", pr.ReturnID,
		"returnNumber", pr.ReturnNumber,
		"stockInId", pr.StockInID,
		"grandTotal", pr.GrandTotal().String(),
	)

	return pr, nil
}

func (s *ReturnsService) mutate(ctx context.Context, returnID string, fn func(*domain.PurchaseReturn) error, message string, fields ...any) (*domain.PurchaseReturn, error) {
	var pr *domain.PurchaseReturn
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		found, err := s.find(ctx, returnID)
		if err != nil {
			return err
		}
		if err := fn(found); err != nil {
			return err
		}
		pr = found
		return s.returns.Save(ctx, found)
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.logger.WithContext(ctx).WithDocument(DocumentPurchaseReturn, pr.ReturnID).Info(message, append([]any{"status", pr.Status}, fields...)...)
	return pr, nil
}

func (s *ReturnsService) find(ctx context.Context, returnID string) (*domain.PurchaseReturn, error) {
	pr, err := s.returns.FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, domain.ErrPurchaseReturnNotFound
	}
	return pr, nil
}

func (s *ReturnsService) findStockIn(ctx context.Context, stockInID string) (*domain.StockIn, error) {
	si, err := s.stockIns.FindByID(ctx, stockInID)
	if err != nil {
		return nil, err
	}
	if si == nil {
		return nil, domain.ErrStockInNotFound
	}
	return si, nil
}

// GetPurchaseReturn retrieves a return
func (s *ReturnsService) GetPurchaseReturn(ctx context.Context, returnID string) (*domain.PurchaseReturn, error) {
	pr, err := s.find(ctx, returnID)
	if err != nil {
		return nil, mapError(err)
	}
	return pr, nil
}

// ListPurchaseReturns lists returns
func (s *ReturnsService) ListPurchaseReturns(ctx context.Context, query ListDocumentsQuery) (*Page[*domain.PurchaseReturn], error) {
	returns, err := s.returns.List(ctx, query.Filter, query.Pagination)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := s.returns.Count(ctx, query.Filter)
	if err != nil {
		return nil, mapError(err)
	}
	return &Page[*domain.PurchaseReturn]{Items: returns, TotalItems: total, Pagination: query.Pagination}, nil
}
