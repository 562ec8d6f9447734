package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/api/dto"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/application"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/middleware"
)

// ReconciliationHandler serves the entry form's live preview
type ReconciliationHandler struct {
	service *application.ReconciliationService
	logger  *logging.Logger
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(service *application.ReconciliationService, logger *logging.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{
		service: service,
		logger:  logger,
	}
}

// Preview handles POST /api/v1/reconciliation/preview
func (h *ReconciliationHandler) Preview(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.PreviewRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	middleware.SpanAttributes(c,
		attribute.Int("lines.count", len(req.Items)),
		attribute.Bool("ignore_baseline", req.IgnoreBaseline),
	)

	result := h.service.Preview(c.Request.Context(), req.ToCommand())
	c.JSON(http.StatusOK, gin.H{"data": dto.ToReconciliationResponse(result)})
}
