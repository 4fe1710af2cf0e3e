// Package handlers implements the admin API endpoints.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"mercadito/internal/core/apperror"
	"mercadito/internal/core/appctx"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// BindJSON binds and validates a JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("cuerpo de la petición inválido").
			WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers the error on the gin context and aborts; the JSON
// response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntParam parses an integer path parameter.
func (h *BaseHandler) ParseIntParam(c *gin.Context, key string) (int, bool) {
	v, err := strconv.Atoi(c.Param(key))
	if err != nil {
		h.Error(c, apperror.NewValidation("parámetro inválido: "+key).
			WithDetail("value", c.Param(key)))
		return 0, false
	}
	return v, true
}

// SessionUserID returns the signed-in user id.
func (h *BaseHandler) SessionUserID(c *gin.Context) string {
	return appctx.GetSessionUserID(c.Request.Context())
}
