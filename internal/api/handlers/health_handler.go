// internal/api/handlers/health_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stackvity/ocr-server/internal/domain"
	"github.com/stackvity/ocr-server/internal/recognizer"
	"go.uber.org/zap"
)

// HealthHandler reports process and recognizer readiness for /health.
type HealthHandler struct {
	recognizer recognizer.Recognizer
	logger     *zap.Logger
}

// NewHealthHandler constructs a HealthHandler backed by the shared Recognizer.
func NewHealthHandler(r recognizer.Recognizer, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		recognizer: r,
		logger:     logger.Named("HealthHandler"),
	}
}

// HealthCheck pings the recognizer engine and reports its readiness.
// Returns 200 with ocr_status "ok" when the engine is ready, 200 with
// ocr_status "not_initialized" when it is not — the service itself stays up
// even when the recognizer has not finished initializing, per spec.md §6.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	const operation = "HealthHandler.HealthCheck"

	status := domain.HealthStatus{Status: "ok", OCRStatus: "ok"}

	if err := h.recognizer.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("recognizer ping failed", zap.String("operation", operation), zap.Error(err))
		status.OCRStatus = "not_initialized"
	}

	c.JSON(http.StatusOK, status)
}
