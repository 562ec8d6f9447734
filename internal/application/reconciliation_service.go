package application

import (
	"context"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
)

// ReconciliationService previews a reconciliation without persisting anything
type ReconciliationService struct {
	logger *logging.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(logger *logging.Logger) *ReconciliationService {
	return &ReconciliationService{logger: logger.WithComponent("reconciliation")}
}

// Preview reconciles the items against baselines reduced by cmd.Prior
func (s *ReconciliationService) Preview(ctx context.Context, cmd PreviewCommand) reconciliation.Result {
	result := reconciliation.Reconcile(cmd.Items, cmd.Prior)
	if cmd.IgnoreBaseline {
		result.Blocking = false
		for i := range result.Lines {
			errs := reconciliation.Without(result.Lines[i].Errors, reconciliation.CodeExceedsOrdered)
			if errs == nil {
				errs = []reconciliation.ValidationError{}
			}
			result.Lines[i].Errors = errs
			if reconciliation.HasBlocking(errs) {
				result.Blocking = true
			}
		}
	}

	s.logger.WithContext(ctx).Debug("Previewed reconciliation",
		"lines", len(result.Lines),
		"blocking", result.Blocking,
		"completionPct", result.Summary.CompletionPct.String(),
	)
	return result
}
