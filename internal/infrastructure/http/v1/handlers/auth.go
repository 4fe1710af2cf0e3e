package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mercadito/internal/auth"
	"mercadito/internal/infrastructure/http/v1/dto"
)

// AuthHandler exposes sign-in.
type AuthHandler struct {
	BaseHandler
	service *auth.Service
}

// NewAuthHandler creates the handler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register wires the routes.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.Login(c.Request.Context(), req.Correo, req.Contrasena)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
