package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mercadito/internal/infrastructure/http/v1/dto"
	"mercadito/internal/orders"
)

// OrdersHandler exposes the order line-item manager.
type OrdersHandler struct {
	BaseHandler
	manager *orders.Manager
}

// NewOrdersHandler creates the handler.
func NewOrdersHandler(manager *orders.Manager) *OrdersHandler {
	return &OrdersHandler{manager: manager}
}

// Register wires the routes.
func (h *OrdersHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/orders/summary", h.Summary)
	rg.POST("/orders/:id/open", h.Open)
	rg.POST("/orders/:id/recalculate", h.Recalculate)
	rg.POST("/orders/:id/lines", h.AddLine)
	rg.PUT("/orders/lines/:lineID", h.UpdateLine)
	rg.DELETE("/orders/lines/:lineID", h.RemoveLine)
	rg.POST("/orders/:id/clear", h.ClearAll)
	rg.POST("/orders/close", h.Close)
}

// Summary returns the aggregated per-order table.
func (h *OrdersHandler) Summary(c *gin.Context) {
	summaries, err := h.manager.Summaries(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": summaries})
}

// Open loads the line-item manager for one order.
func (h *OrdersHandler) Open(c *gin.Context) {
	view, err := h.manager.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Recalculate re-runs the aggregate sequence for the open order.
func (h *OrdersHandler) Recalculate(c *gin.Context) {
	view, err := h.manager.Recalculate(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddLine appends a product to the open order.
func (h *OrdersHandler) AddLine(c *gin.Context) {
	var req dto.AddLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	view, err := h.manager.AddLine(c.Request.Context(), req.ProductID, req.Cantidad)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateLine changes a line quantity.
func (h *OrdersHandler) UpdateLine(c *gin.Context) {
	var req dto.UpdateLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	view, err := h.manager.UpdateQuantity(c.Request.Context(), c.Param("lineID"), req.Cantidad)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RemoveLine hides a line and recalculates.
func (h *OrdersHandler) RemoveLine(c *gin.Context) {
	view, err := h.manager.RemoveLine(c.Request.Context(), c.Param("lineID"))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ClearAll hides every line of an order and resets its total.
func (h *OrdersHandler) ClearAll(c *gin.Context) {
	if err := h.manager.ClearAll(c.Request.Context(), c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "total": "Bs. 0.00"})
}

// Close drops the per-order state.
func (h *OrdersHandler) Close(c *gin.Context) {
	h.manager.Close()
	c.Status(http.StatusNoContent)
}
