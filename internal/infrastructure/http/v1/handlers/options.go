package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mercadito/internal/core/apperror"
	"mercadito/internal/domain"
)

// OptionsHandler serves {value, label} pairs for select fields.
type OptionsHandler struct {
	BaseHandler
	repos domain.RepositorySet
}

// NewOptionsHandler creates the handler.
func NewOptionsHandler(repos domain.RepositorySet) *OptionsHandler {
	return &OptionsHandler{repos: repos}
}

// Register wires the routes.
func (h *OptionsHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/options/:entity", h.List)
}

// List returns the option list, optionally scoped by ?parent=.
func (h *OptionsHandler) List(c *gin.Context) {
	entity := c.Param("entity")
	repo, ok := h.repos.Repo(entity)
	if !ok {
		h.Error(c, apperror.NewConfigMissing(entity))
		return
	}
	options, err := repo.ListOptions(c.Request.Context(), c.Query("parent"))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": options})
}
