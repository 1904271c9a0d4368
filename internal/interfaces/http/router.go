package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/meisai-checker/internal/interfaces/http/handlers"
	"github.com/turtacn/meisai-checker/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware of the route tree.
// Nil handlers leave their routes unmounted.
type RouterConfig struct {
	Mode string // gin mode: debug | release | test

	ReviewHandler *handlers.ReviewHandler
	HealthHandler *handlers.HealthHandler

	CORS    *middleware.CORSConfig
	Logging middleware.LoggingConfig

	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter builds the gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	r.Use(middleware.Metrics(cfg.Metrics))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	registerReviewRoutes(api, cfg.ReviewHandler)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{Code: "COMMON_005", Message: "route not found"})
	})
	return r
}

func registerReviewRoutes(r *gin.RouterGroup, h *handlers.ReviewHandler) {
	if h == nil {
		return
	}
	reviews := r.Group("/reviews")
	reviews.POST("", h.Create)
	reviews.GET("", h.List)
	reviews.GET("/:id", h.Get)
}

//Personal.AI order the ending
