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

// PurchaseReturnHandler handles HTTP requests for purchase returns
type PurchaseReturnHandler struct {
	service *application.ReturnsService
	logger  *logging.Logger
}

// NewPurchaseReturnHandler creates a new PurchaseReturnHandler
func NewPurchaseReturnHandler(service *application.ReturnsService, logger *logging.Logger) *PurchaseReturnHandler {
	return &PurchaseReturnHandler{
		service: service,
		logger:  logger,
	}
}

// CreatePurchaseReturn handles POST /api/v1/purchase-returns
func (h *PurchaseReturnHandler) CreatePurchaseReturn(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.CreatePurchaseReturnRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	middleware.SpanAttributes(c,
		attribute.String("stock_in.id", req.StockInID),
	)

	pr, err := h.service.CreatePurchaseReturn(c.Request.Context(), req.ToCommand())
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": dto.ToPurchaseReturnResponse(pr)})
}

// ListPurchaseReturns handles GET /api/v1/purchase-returns
func (h *PurchaseReturnHandler) ListPurchaseReturns(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	page, query := parseListQuery(c)
	result, err := h.service.ListPurchaseReturns(c.Request.Context(), query)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, api.NewPageResponse(dto.Map(result.Items, dto.ToPurchaseReturnResponse), page, result.TotalItems))
}

// GetPurchaseReturn handles GET /api/v1/purchase-returns/:id
func (h *PurchaseReturnHandler) GetPurchaseReturn(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	pr, err := h.service.GetPurchaseReturn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToPurchaseReturnResponse(pr)})
}

// UpdateHeader handles PUT /api/v1/purchase-returns/:id/header
func (h *PurchaseReturnHandler) UpdateHeader(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.UpdateHeaderRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	pr, err := h.service.UpdatePurchaseReturnHeader(c.Request.Context(), req.ToCommand(c.Param("id")))
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToPurchaseReturnResponse(pr)})
}

// UpdateLine handles PATCH /api/v1/purchase-returns/:id/lines/:ref
func (h *PurchaseReturnHandler) UpdateLine(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.UpdateLineRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	pr, err := h.service.UpdateReturnLine(c.Request.Context(), req.ToCommand(c.Param("id"), c.Param("ref")))
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToPurchaseReturnResponse(pr)})
}

// PostPurchaseReturn handles PUT /api/v1/purchase-returns/:id/post
func (h *PurchaseReturnHandler) PostPurchaseReturn(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	returnID := c.Param("id")
	middleware.SpanAttributes(c,
		attribute.String("purchase_return.id", returnID),
	)

	pr, err := h.service.PostPurchaseReturn(c.Request.Context(), returnID)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToPurchaseReturnResponse(pr)})
}

// CancelPurchaseReturn handles PUT /api/v1/purchase-returns/:id/cancel
func (h *PurchaseReturnHandler) CancelPurchaseReturn(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.CancelRequest
	if appErr := bindOptional(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	pr, err := h.service.CancelPurchaseReturn(c.Request.Context(), application.CancelDocumentCommand{
		DocumentID: c.Param("id"),
		Reason:     req.Reason,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToPurchaseReturnResponse(pr)})
}
