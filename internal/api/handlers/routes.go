package handlers

import "github.com/gin-gonic/gin"

// Set groups the handlers served under /api/v1
type Set struct {
	PurchaseOrders  *PurchaseOrderHandler
	StockIns        *StockInHandler
	PurchaseReturns *PurchaseReturnHandler
	Catalogs        *CatalogHandler
	Reconciliation  *ReconciliationHandler
}

// RegisterRoutes mounts every API route on v1
func RegisterRoutes(v1 gin.IRouter, h Set) {
	// Live preview for the entry forms
	v1.POST("/reconciliation/preview", h.Reconciliation.Preview)

	orders := v1.Group("/purchase-orders")
	{
		orders.POST("", h.PurchaseOrders.CreatePurchaseOrder)
		orders.GET("", h.PurchaseOrders.ListPurchaseOrders)
		orders.GET("/:id", h.PurchaseOrders.GetPurchaseOrder)
		orders.PUT("/:id/header", h.PurchaseOrders.UpdateHeader)
		orders.PUT("/:id/confirm", h.PurchaseOrders.ConfirmPurchaseOrder)
		orders.PUT("/:id/cancel", h.PurchaseOrders.CancelPurchaseOrder)
		orders.GET("/:id/reconciliation", h.PurchaseOrders.GetOrderReconciliation)
	}

	stockIns := v1.Group("/stock-ins")
	{
		stockIns.POST("", h.StockIns.CreateStockIn)
		stockIns.GET("", h.StockIns.ListStockIns)
		stockIns.GET("/:id", h.StockIns.GetStockIn)
		stockIns.PUT("/:id/header", h.StockIns.UpdateHeader)
		stockIns.POST("/:id/lines", h.StockIns.AddLine)
		stockIns.PATCH("/:id/lines/:ref", h.StockIns.UpdateLine)
		stockIns.PUT("/:id/post", h.StockIns.PostStockIn)
		stockIns.PUT("/:id/cancel", h.StockIns.CancelStockIn)
	}

	returns := v1.Group("/purchase-returns")
	{
		returns.POST("", h.PurchaseReturns.CreatePurchaseReturn)
		returns.GET("", h.PurchaseReturns.ListPurchaseReturns)
		returns.GET("/:id", h.PurchaseReturns.GetPurchaseReturn)
		returns.PUT("/:id/header", h.PurchaseReturns.UpdateHeader)
		returns.PATCH("/:id/lines/:ref", h.PurchaseReturns.UpdateLine)
		returns.PUT("/:id/post", h.PurchaseReturns.PostPurchaseReturn)
		returns.PUT("/:id/cancel", h.PurchaseReturns.CancelPurchaseReturn)
	}

	catalogs := v1.Group("/catalogs")
	{
		catalogs.POST("/labels", h.Catalogs.ResolveLabels)
		catalogs.POST("/:kind", h.Catalogs.CreateEntry)
		catalogs.GET("/:kind", h.Catalogs.ListEntries)
		catalogs.GET("/:kind/:id", h.Catalogs.GetEntry)
		catalogs.PUT("/:kind/:id", h.Catalogs.UpdateEntry)
		catalogs.DELETE("/:kind/:id", h.Catalogs.DeactivateEntry)
	}
}
