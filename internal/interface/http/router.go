package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/solarcast/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger, handler.metrics),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", handler.Metrics)

	api := router.Group("/api/v1")
	api.Use(rateLimitMiddleware(cfg.HTTP.RateLimit, handler.metrics, handler.logger))
	{
		api.POST("/estimates", handler.Estimate)
		api.GET("/locations/suggest", handler.Suggest)
		api.POST("/ai/train", handler.Train)
		api.POST("/ai/train/stream", handler.TrainStream)
		api.POST("/ai/predict", handler.Predict)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
