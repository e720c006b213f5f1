// internal/api/handlers/handler.go
package handlers

// Handler groups all HTTP handlers for dependency injection into api.go and
// the composition root.
type Handler struct {
	OCRHandler      *OCRHandler
	DocumentHandler *DocumentHandler
	HealthHandler   *HealthHandler
	InfoHandler     *InfoHandler
}

// NewHandler creates a new Handler instance, injecting all handler dependencies.
func NewHandler(
	ocrHandler *OCRHandler,
	documentHandler *DocumentHandler,
	healthHandler *HealthHandler,
	infoHandler *InfoHandler,
) *Handler {
	return &Handler{
		OCRHandler:      ocrHandler,
		DocumentHandler: documentHandler,
		HealthHandler:   healthHandler,
		InfoHandler:     infoHandler,
	}
}
