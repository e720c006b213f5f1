// internal/api/handlers/info_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stackvity/ocr-server/internal/dispatcher"
	"github.com/stackvity/ocr-server/internal/domain"
)

// InfoHandler serves the two read-only introspection endpoints: /metrics
// and /supported_formats. Neither touches the Dispatcher's cache or
// recognizer, so it carries no logger of its own — there is nothing here
// worth logging per request.
type InfoHandler struct {
	dispatcher *dispatcher.Dispatcher
}

// NewInfoHandler constructs an InfoHandler.
func NewInfoHandler(d *dispatcher.Dispatcher) *InfoHandler {
	return &InfoHandler{dispatcher: d}
}

// Metrics handles GET /metrics: a snapshot of the running job/cache counters
// and the bounded recent-latency sample.
func (h *InfoHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.dispatcher.Metrics().Snapshot())
}

// SupportedFormats handles GET /supported_formats: the static allow-listed
// extensions for each of the three upload kinds.
func (h *InfoHandler) SupportedFormats(c *gin.Context) {
	c.JSON(http.StatusOK, domain.SupportedFormats{
		Images:    domain.ImageExtensions,
		Videos:    domain.VideoExtensions,
		Documents: domain.DocumentExtensions,
	})
}
