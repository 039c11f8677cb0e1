package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/solarcast/internal/domain/prediction"
	"github.com/yanqian/solarcast/pkg/metrics"
)

// Handler wires the HTTP transport to the prediction service.
type Handler struct {
	svc     prediction.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc prediction.Service, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		svc:     svc,
		metrics: m,
		logger:  logger.With("component", "http.handler"),
	}
}

// Estimate handles the panel form submission.
func (h *Handler) Estimate(c *gin.Context) {
	var req prediction.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.svc.Estimate(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Suggest powers location autocomplete. It never fails on upstream problems.
func (h *Handler) Suggest(c *gin.Context) {
	req := prediction.SuggestRequest{
		Query:    c.Query("q"),
		Language: c.Query("lang"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", err))
			return
		}
		req.Limit = limit
	}

	resp, err := h.svc.Suggest(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Train runs a regressor training synchronously and returns the comparison table.
func (h *Handler) Train(c *gin.Context) {
	var req prediction.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.svc.Train(c.Request.Context(), req, nil)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TrainStream streams training progress using Server-Sent Events.
func (h *Handler) TrainStream(c *gin.Context) {
	var req prediction.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	stream, err := h.svc.TrainStream(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for event := range stream {
		payload, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("marshal train event failed", "error", err)
			continue
		}
		c.Writer.Write([]byte("data: "))
		c.Writer.Write(payload)
		c.Writer.Write([]byte("\n\n"))
		flusher.Flush()
	}
}

// Predict asks a trained model for one day.
func (h *Handler) Predict(c *gin.Context) {
	var req prediction.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.svc.Predict(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Metrics exposes the Prometheus registry.
func (h *Handler) Metrics(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
