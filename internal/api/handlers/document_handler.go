// internal/api/handlers/document_handler.go
package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/stackvity/ocr-server/internal/documents"
	"github.com/stackvity/ocr-server/internal/domain"
	"github.com/stackvity/ocr-server/internal/utils"
	"go.uber.org/zap"
)

// DocumentHandler serves /extract/document, delegating to the extension-keyed
// adapter registry.
type DocumentHandler struct {
	registry *documents.Registry
	logger   *zap.Logger
}

// NewDocumentHandler constructs a DocumentHandler.
func NewDocumentHandler(registry *documents.Registry, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{registry: registry, logger: logger.Named("DocumentHandler")}
}

type extractRequest struct {
	FilePath string `json:"file_path"`
}

// Extract handles POST /extract/document: a JSON body naming a server-side
// file_path, resolved through the document adapter registry.
func (h *DocumentHandler) Extract(c *gin.Context) {
	const operation = "DocumentHandler.Extract"
	requestID := utils.GetRequestID(c.Request.Context())

	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, operation, requestID, domain.NewErrInputInvalid("decoding request body", err))
		return
	}
	if req.FilePath == "" {
		h.respondError(c, operation, requestID, domain.NewErrInputMissing("file_path"))
		return
	}
	if err := validateExtension(req.FilePath, domain.DocumentExtensions); err != nil {
		h.respondError(c, operation, requestID, err)
		return
	}
	if _, err := os.Stat(req.FilePath); err != nil {
		h.respondError(c, operation, requestID, domain.NewNotFoundError("file", req.FilePath))
		return
	}

	result, err := h.registry.Extract(req.FilePath)
	if err != nil {
		h.respondError(c, operation, requestID, domain.NewErrFatal("extracting document", err))
		return
	}

	h.logger.Info("document extraction complete", zap.String("operation", operation), zap.String("request_id", requestID), zap.Bool("success", result.Success))
	c.JSON(http.StatusOK, result)
}

func (h *DocumentHandler) respondError(c *gin.Context, operation, requestID string, err error) {
	status := domain.HTTPStatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("operation", operation), zap.String("request_id", requestID), zap.Error(err))
	} else {
		h.logger.Warn("request rejected", zap.String("operation", operation), zap.String("request_id", requestID), zap.Error(err))
	}
	utils.RespondWithError(c, status, err.Error())
}
