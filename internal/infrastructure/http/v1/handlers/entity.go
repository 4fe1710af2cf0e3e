package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mercadito/internal/controller"
	"mercadito/internal/infrastructure/http/v1/dto"
)

// EntityHandler exposes the generic table views. Controller state
// (search term, filter, current page) lives server-side per entity;
// the endpoints mutate it and return the resulting view.
type EntityHandler struct {
	BaseHandler
	manager *controller.Manager
}

// NewEntityHandler creates the handler.
func NewEntityHandler(manager *controller.Manager) *EntityHandler {
	return &EntityHandler{manager: manager}
}

// Register wires the routes.
func (h *EntityHandler) Register(rg *gin.RouterGroup) {
	tables := rg.Group("/tables/:entity")
	tables.POST("/activate", h.Activate)
	tables.DELETE("/activate", h.Deactivate)
	tables.GET("/view", h.View)
	tables.POST("/search", h.Search)
	tables.POST("/filter", h.Filter)
	tables.POST("/page/:page", h.Page)
	tables.DELETE("/rows/:id", h.Hide)
	tables.POST("/rows/:id/restore", h.Restore)
}

// Activate loads (or reuses) the entity's controller and returns the
// first rendered page.
func (h *EntityHandler) Activate(c *gin.Context) {
	ctx := c.Request.Context()
	tc, err := h.manager.Activate(ctx, c.Param("entity"), controller.RendererFunc(func(controller.TableView) {}))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, tc.View())
}

// Deactivate tears the controller down.
func (h *EntityHandler) Deactivate(c *gin.Context) {
	h.manager.Deactivate(c.Param("entity"))
	c.Status(http.StatusNoContent)
}

// View returns the current render state without changing it.
func (h *EntityHandler) View(c *gin.Context) {
	tc, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tc.View())
}

// Search updates the search term. Non-empty terms apply after the
// debounce interval; the response reflects the state at reply time.
func (h *EntityHandler) Search(c *gin.Context) {
	tc, ok := h.controller(c)
	if !ok {
		return
	}
	var req dto.SearchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tc.SetSearchTerm(req.Term)
	c.JSON(http.StatusOK, tc.View())
}

// Filter applies the secondary filter value.
func (h *EntityHandler) Filter(c *gin.Context) {
	tc, ok := h.controller(c)
	if !ok {
		return
	}
	var req dto.FilterRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tc.SetFilter(req.Value)
	c.JSON(http.StatusOK, tc.View())
}

// Page navigates to a page.
func (h *EntityHandler) Page(c *gin.Context) {
	tc, ok := h.controller(c)
	if !ok {
		return
	}
	page, ok := h.ParseIntParam(c, "page")
	if !ok {
		return
	}
	tc.GoToPage(page)
	c.JSON(http.StatusOK, tc.View())
}

// Hide soft-deletes a row.
func (h *EntityHandler) Hide(c *gin.Context) {
	tc, ok := h.controller(c)
	if !ok {
		return
	}
	if err := tc.Hide(c.Request.Context(), c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, tc.View())
}

// Restore makes a hidden row visible again.
func (h *EntityHandler) Restore(c *gin.Context) {
	tc, ok := h.controller(c)
	if !ok {
		return
	}
	if err := tc.Restore(c.Request.Context(), c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, tc.View())
}

// controller resolves the active controller, activating on demand so a
// restarted server keeps serving stateful clients.
func (h *EntityHandler) controller(c *gin.Context) (*controller.TableController, bool) {
	entity := c.Param("entity")
	if tc, ok := h.manager.Get(entity); ok {
		return tc, true
	}
	tc, err := h.manager.Activate(c.Request.Context(), entity, controller.RendererFunc(func(controller.TableView) {}))
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return tc, true
}
