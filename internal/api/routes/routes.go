// internal/api/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/stackvity/ocr-server/internal/api/handlers"
)

// SetupRouter wires the OCR HTTP surface spec.md §6 describes onto r.
func SetupRouter(
	r *gin.Engine,
	ocrHandler *handlers.OCRHandler,
	documentHandler *handlers.DocumentHandler,
	healthHandler *handlers.HealthHandler,
	infoHandler *handlers.InfoHandler,
) {
	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/metrics", infoHandler.Metrics)
	r.GET("/supported_formats", infoHandler.SupportedFormats)

	ocr := r.Group("/ocr")
	{
		ocr.POST("/image", ocrHandler.Image)
		ocr.POST("/batch", ocrHandler.Batch)
		ocr.POST("/video", ocrHandler.Video)
	}

	extract := r.Group("/extract")
	{
		extract.POST("/document", documentHandler.Extract)
	}
}
