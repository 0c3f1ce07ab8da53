package handler

import (
	"github.com/SergeiKhy/quicklink/internal/middleware"
	"github.com/SergeiKhy/quicklink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig carries the dependencies of the HTTP layer.
type RouterConfig struct {
	Registry service.URLRegistry
	Resolver service.RedirectResolver
	BaseURL  string
	Health   HealthChecker
	Logger   *zap.Logger
}

// NewRouter registers all routes on a new gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))

	urlHandler := NewURLHandler(cfg.Registry, cfg.Resolver, cfg.BaseURL, logger)

	router.GET("/health", Health(cfg.Health))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/shorten", urlHandler.Shorten)
		v1.PATCH("/urls/:code", urlHandler.UpdateURL)
		v1.DELETE("/urls/:code", urlHandler.DeleteURL)
		v1.GET("/stats/:code", urlHandler.Stats)
	}

	router.GET("/:code", urlHandler.Redirect)

	return router
}
