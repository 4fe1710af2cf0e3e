// Package v1 assembles the admin API.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mercadito/internal/auth"
	"mercadito/internal/controller"
	"mercadito/internal/domain"
	"mercadito/internal/infrastructure/http/v1/handlers"
	"mercadito/internal/infrastructure/http/v1/middleware"
	"mercadito/internal/orders"
	"mercadito/internal/schema"
)

// RouterConfig carries everything the router wires together.
type RouterConfig struct {
	Schemas     *schema.Registry
	Repos       domain.RepositorySet
	Files       domain.FileStore
	Controllers *controller.Manager
	Orders      *orders.Manager
	AuthService *auth.Service
	JWT         *auth.JWTService

	// UploadDir, when set, is served under /uploads.
	UploadDir string

	Production bool
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.UploadDir != "" {
		router.Static("/uploads", cfg.UploadDir)
	}

	api := router.Group("/api/v1")
	handlers.NewAuthHandler(cfg.AuthService).Register(api)

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.JWT))
	handlers.NewEntityHandler(cfg.Controllers).Register(protected)
	handlers.NewFormHandler(cfg.Schemas, cfg.Repos, cfg.Files).Register(protected)
	handlers.NewOrdersHandler(cfg.Orders).Register(protected)
	handlers.NewOptionsHandler(cfg.Repos).Register(protected)

	return router
}
