package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/api/dto"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/application"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/api"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/middleware"
)

// CatalogHandler handles HTTP requests for the reference catalogs
type CatalogHandler struct {
	service *application.CatalogService
	logger  *logging.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service *application.CatalogService, logger *logging.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger,
	}
}

func (h *CatalogHandler) kind(c *gin.Context, responder *middleware.ErrorResponder) (domain.CatalogKind, bool) {
	kind, err := domain.ParseCatalogKind(c.Param("kind"))
	if err != nil {
		responder.RespondBadRequest("unknown catalog kind: " + c.Param("kind"))
		return "", false
	}
	return kind, true
}

// CreateEntry handles POST /api/v1/catalogs/:kind
func (h *CatalogHandler) CreateEntry(c *gin.Context) {
	h.upsert(c, "", http.StatusCreated)
}

// UpdateEntry handles PUT /api/v1/catalogs/:kind/:id
func (h *CatalogHandler) UpdateEntry(c *gin.Context) {
	h.upsert(c, c.Param("id"), http.StatusOK)
}

func (h *CatalogHandler) upsert(c *gin.Context, entryID string, status int) {
	responder := middleware.NewErrorResponder(c, h.logger)

	kind, ok := h.kind(c, responder)
	if !ok {
		return
	}

	var req dto.UpsertCatalogEntryRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	entry, err := h.service.UpsertEntry(c.Request.Context(), req.ToCommand(kind, entryID))
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(status, gin.H{"data": dto.ToCatalogEntryResponse(entry)})
}

// GetEntry handles GET /api/v1/catalogs/:kind/:id
func (h *CatalogHandler) GetEntry(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	kind, ok := h.kind(c, responder)
	if !ok {
		return
	}

	entry, err := h.service.GetEntry(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToCatalogEntryResponse(entry)})
}

// ListEntries handles GET /api/v1/catalogs/:kind
func (h *CatalogHandler) ListEntries(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	kind, ok := h.kind(c, responder)
	if !ok {
		return
	}

	page := api.ParsePagination(c)
	result, err := h.service.ListEntries(c.Request.Context(), application.ListCatalogQuery{
		Filter: domain.CatalogFilter{
			Kind:       kind,
			ActiveOnly: c.Query("activeOnly") == "true",
			Search:     c.Query("search"),
		},
		Pagination: domain.Pagination{Page: page.Page, PageSize: page.PageSize},
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, api.NewPageResponse(dto.Map(result.Items, dto.ToCatalogEntryResponse), page, result.TotalItems))
}

// DeactivateEntry handles DELETE /api/v1/catalogs/:kind/:id
func (h *CatalogHandler) DeactivateEntry(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	kind, ok := h.kind(c, responder)
	if !ok {
		return
	}

	entry, err := h.service.Deactivate(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToCatalogEntryResponse(entry)})
}

// ResolveLabels handles POST /api/v1/catalogs/labels
func (h *CatalogHandler) ResolveLabels(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req dto.ResolveLabelsRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	kind := domain.CatalogKind(req.Kind)
	labels, err := h.service.ResolveLabels(c.Request.Context(), kind, req.IDs)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToLabelsResponse(kind, labels)})
}
