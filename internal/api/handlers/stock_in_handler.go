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

// StockInHandler handles HTTP requests for goods receipts
type StockInHandler struct {
	service *application.ReceivingService
	logger  *logging.Logger
}

// NewStockInHandler creates a new StockInHandler
func NewStockInHandler(service *application.ReceivingService, logger *logging.Logger) *StockInHandler {
	return &StockInHandler{
		service: service,
		logger:  logger,
	}
}

// CreateStockIn handles POST /api/v1/stock-ins
func (h *StockInHandler) CreateStockIn(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.CreateStockInRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	middleware.SpanAttributes(c,
		attribute.String("purchase_order.id", req.PurchaseOrderID),
		attribute.Bool("stock_in.manual", req.PurchaseOrderID == ""),
	)

	si, err := h.service.CreateStockIn(c.Request.Context(), req.ToCommand())
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": dto.ToStockInResponse(si)})
}

// ListStockIns handles GET /api/v1/stock-ins
func (h *StockInHandler) ListStockIns(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	page, query := parseListQuery(c)
	result, err := h.service.ListStockIns(c.Request.Context(), query)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, api.NewPageResponse(dto.Map(result.Items, dto.ToStockInResponse), page, result.TotalItems))
}

// GetStockIn handles GET /api/v1/stock-ins/:id
func (h *StockInHandler) GetStockIn(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	si, err := h.service.GetStockIn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToStockInResponse(si)})
}

// UpdateHeader handles PUT /api/v1/stock-ins/:id/header
func (h *StockInHandler) UpdateHeader(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.UpdateHeaderRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	si, err := h.service.UpdateStockInHeader(c.Request.Context(), req.ToCommand(c.Param("id")))
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToStockInResponse(si)})
}

// AddLine handles POST /api/v1/stock-ins/:id/lines
func (h *StockInHandler) AddLine(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.ManualLineRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	si, err := h.service.AddStockInLine(c.Request.Context(), c.Param("id"), req.ToManualLine())
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToStockInResponse(si)})
}

// UpdateLine handles PATCH /api/v1/stock-ins/:id/lines/:ref
func (h *StockInHandler) UpdateLine(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.UpdateLineRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	middleware.SpanAttributes(c,
		attribute.String("stock_in.id", c.Param("id")),
		attribute.String("line.ref", c.Param("ref")),
	)

	si, err := h.service.UpdateStockInLine(c.Request.Context(), req.ToCommand(c.Param("id"), c.Param("ref")))
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToStockInResponse(si)})
}

// PostStockIn handles PUT /api/v1/stock-ins/:id/post
func (h *StockInHandler) PostStockIn(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	stockInID := c.Param("id")
	middleware.SpanAttributes(c,
		attribute.String("stock_in.id", stockInID),
	)

	si, err := h.service.PostStockIn(c.Request.Context(), stockInID)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToStockInResponse(si)})
}

// CancelStockIn handles PUT /api/v1/stock-ins/:id/cancel
func (h *StockInHandler) CancelStockIn(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.CancelRequest
	if appErr := bindOptional(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	si, err := h.service.CancelStockIn(c.Request.Context(), application.CancelDocumentCommand{
		DocumentID: c.Param("id"),
		Reason:     req.Reason,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToStockInResponse(si)})
}
