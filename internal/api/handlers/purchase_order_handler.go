package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/api/dto"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/application"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/api"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/middleware"
)

// PurchaseOrderHandler handles HTTP requests for purchase orders
type PurchaseOrderHandler struct {
	service *application.PurchasingService
	logger  *logging.Logger
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(service *application.PurchasingService, logger *logging.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		service: service,
		logger:  logger,
	}
}

// CreatePurchaseOrder handles POST /api/v1/purchase-orders
func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.CreatePurchaseOrderRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	middleware.SpanAttributes(c,
		attribute.String("party.ref", req.Header.PartyRef),
		attribute.Int("lines.count", len(req.Lines)),
	)

	po, err := h.service.CreatePurchaseOrder(c.Request.Context(), req.ToCommand())
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": dto.ToPurchaseOrderResponse(po)})
}

// ListPurchaseOrders handles GET /api/v1/purchase-orders
func (h *PurchaseOrderHandler) ListPurchaseOrders(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	page, query := parseListQuery(c)
	result, err := h.service.ListPurchaseOrders(c.Request.Context(), query)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, api.NewPageResponse(dto.Map(result.Items, dto.ToPurchaseOrderResponse), page, result.TotalItems))
}

// GetPurchaseOrder handles GET /api/v1/purchase-orders/:id
func (h *PurchaseOrderHandler) GetPurchaseOrder(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	purchaseOrderID := c.Param("id")
	middleware.SpanAttributes(c,
		attribute.String("purchase_order.id", purchaseOrderID),
	)

	po, err := h.service.GetPurchaseOrder(c.Request.Context(), purchaseOrderID)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToPurchaseOrderResponse(po)})
}

// UpdateHeader handles PUT /api/v1/purchase-orders/:id/header
func (h *PurchaseOrderHandler) UpdateHeader(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.UpdateHeaderRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	po, err := h.service.UpdatePurchaseOrderHeader(c.Request.Context(), req.ToCommand(c.Param("id")))
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToPurchaseOrderResponse(po)})
}

// ConfirmPurchaseOrder handles PUT /api/v1/purchase-orders/:id/confirm
func (h *PurchaseOrderHandler) ConfirmPurchaseOrder(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	po, err := h.service.ConfirmPurchaseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToPurchaseOrderResponse(po)})
}

// CancelPurchaseOrder handles PUT /api/v1/purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) CancelPurchaseOrder(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.CancelRequest
	if appErr := bindOptional(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	po, err := h.service.CancelPurchaseOrder(c.Request.Context(), application.CancelDocumentCommand{
		DocumentID: c.Param("id"),
		Reason:     req.Reason,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToPurchaseOrderResponse(po)})
}

// GetOrderReconciliation handles GET /api/v1/purchase-orders/:id/reconciliation
func (h *PurchaseOrderHandler) GetOrderReconciliation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	view, err := h.service.GetOrderReconciliation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToOrderReconciliationResponse(view)})
}
