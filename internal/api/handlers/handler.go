package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/application"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/api"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/errors"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/middleware"
)

func respondError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}

// bindOptional binds a JSON body when one was sent
func bindOptional(c *gin.Context, obj interface{}) *errors.AppError {
	if c.Request.ContentLength == 0 {
		return middleware.ValidateStruct(obj)
	}
	return middleware.BindAndValidate(c, obj)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseListQuery reads pagination and the document filters from the query string
func parseListQuery(c *gin.Context) (api.PageRequest, application.ListDocumentsQuery) {
	page := api.ParsePagination(c)
	filter := api.ParseFilter(c)

	return page, application.ListDocumentsQuery{
		Filter: domain.DocumentFilter{
			Status:          optional(filter.Status),
			PartyRef:        optional(filter.PartyRef),
			BranchRef:       optional(filter.BranchRef),
			PurchaseOrderID: optional(c.Query("purchaseOrderId")),
			StockInID:       optional(c.Query("stockInId")),
			FromDate:        filter.DateFrom,
			ToDate:          filter.DateTo,
		},
		Pagination: domain.Pagination{Page: page.Page, PageSize: page.PageSize},
	}
}
