// internal/api/handlers/ocr_handler.go
package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stackvity/ocr-server/internal/config"
	"github.com/stackvity/ocr-server/internal/dispatcher"
	"github.com/stackvity/ocr-server/internal/domain"
	"github.com/stackvity/ocr-server/internal/utils"
	"go.uber.org/zap"
)

// OCRHandler serves the image, batch, and video OCR endpoints, delegating
// all actual work to the Dispatcher.
type OCRHandler struct {
	dispatcher *dispatcher.Dispatcher
	config     *config.Config
	logger     *zap.Logger
}

// NewOCRHandler constructs an OCRHandler.
func NewOCRHandler(d *dispatcher.Dispatcher, cfg *config.Config, logger *zap.Logger) *OCRHandler {
	return &OCRHandler{dispatcher: d, config: cfg, logger: logger.Named("OCRHandler")}
}

// imageRequest is the JSON body accepted by /ocr/image when the caller
// supplies a server-side path instead of uploading bytes.
type imageRequest struct {
	FilePath              string                 `json:"file_path"`
	PreprocessingOptions  *domain.PreprocessOpts `json:"preprocessing_options"`
	TextProcessingOptions *domain.TextOpts       `json:"text_processing_options"`
}

// batchRequest is the JSON body accepted by /ocr/batch.
type batchRequest struct {
	FilePaths             []string               `json:"file_paths"`
	PreprocessingOptions  *domain.PreprocessOpts `json:"preprocessing_options"`
	TextProcessingOptions *domain.TextOpts       `json:"text_processing_options"`
}

// videoRequest is the JSON body accepted by /ocr/video.
type videoRequest struct {
	FilePath             string                 `json:"file_path"`
	VideoOptions         *domain.VideoOpts      `json:"video_options"`
	PreprocessingOptions *domain.PreprocessOpts `json:"preprocessing_options"`
}

// Image handles POST /ocr/image: either a multipart upload under the "file"
// field (optionally alongside "file_path" as a fallback) or a JSON body
// naming a server-side file_path.
func (h *OCRHandler) Image(c *gin.Context) {
	const operation = "OCRHandler.Image"
	requestID := utils.GetRequestID(c.Request.Context())

	fileBytes, filename, preprocessOpts, textOpts, err := h.loadImageRequest(c)
	if err != nil {
		h.respondError(c, operation, requestID, err)
		return
	}

	if err := validateExtension(filename, domain.ImageExtensions); err != nil {
		h.respondError(c, operation, requestID, err)
		return
	}
	if err := h.validateSize(filename, int64(len(fileBytes))); err != nil {
		h.respondError(c, operation, requestID, err)
		return
	}

	result, err := h.dispatcher.SubmitImage(c.Request.Context(), fileBytes, preprocessOpts, textOpts)
	if err != nil {
		h.respondError(c, operation, requestID, err)
		return
	}

	h.logger.Info("image OCR complete", zap.String("operation", operation), zap.String("request_id", requestID), zap.Bool("success", result.Success))
	c.JSON(http.StatusOK, result)
}

// loadImageRequest resolves either a multipart upload or a JSON body into
// the file bytes and options Image needs.
func (h *OCRHandler) loadImageRequest(c *gin.Context) ([]byte, string, domain.PreprocessOpts, domain.TextOpts, error) {
	preprocessOpts := domain.DefaultPreprocessOpts()
	textOpts := domain.DefaultTextOpts()

	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if fileHeader, err := c.FormFile("file"); err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				return nil, "", preprocessOpts, textOpts, domain.NewErrInputInvalid("opening uploaded file", err)
			}
			defer file.Close()

			if raw := c.PostForm("preprocessing_options"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &preprocessOpts); err != nil {
					return nil, "", preprocessOpts, textOpts, domain.NewErrInputInvalid("parsing preprocessing_options", err)
				}
			}
			if raw := c.PostForm("text_processing_options"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &textOpts); err != nil {
					return nil, "", preprocessOpts, textOpts, domain.NewErrInputInvalid("parsing text_processing_options", err)
				}
			}

			data, err := io.ReadAll(file)
			if err != nil {
				return nil, "", preprocessOpts, textOpts, domain.NewErrTransientIO("reading uploaded file", err)
			}
			return data, fileHeader.Filename, preprocessOpts, textOpts, nil
		}

		filePath := c.PostForm("file_path")
		if filePath == "" {
			return nil, "", preprocessOpts, textOpts, domain.NewErrInputMissing("file")
		}
		data, err := readFileOrNotFound(filePath)
		if err != nil {
			return nil, "", preprocessOpts, textOpts, err
		}
		return data, filePath, preprocessOpts, textOpts, nil
	}

	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, "", preprocessOpts, textOpts, domain.NewErrInputInvalid("decoding request body", err)
	}
	if req.FilePath == "" {
		return nil, "", preprocessOpts, textOpts, domain.NewErrInputMissing("file_path")
	}
	if req.PreprocessingOptions != nil {
		preprocessOpts = *req.PreprocessingOptions
	}
	if req.TextProcessingOptions != nil {
		textOpts = *req.TextProcessingOptions
	}
	data, err := readFileOrNotFound(req.FilePath)
	if err != nil {
		return nil, "", preprocessOpts, textOpts, err
	}
	return data, req.FilePath, preprocessOpts, textOpts, nil
}

// Batch handles POST /ocr/batch: a JSON list of server-side file paths,
// each resolved independently by the Dispatcher.
func (h *OCRHandler) Batch(c *gin.Context) {
	const operation = "OCRHandler.Batch"
	requestID := utils.GetRequestID(c.Request.Context())

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, operation, requestID, domain.NewErrInputInvalid("decoding request body", err))
		return
	}
	if len(req.FilePaths) == 0 {
		h.respondError(c, operation, requestID, domain.NewErrInputMissing("file_paths"))
		return
	}

	preprocessOpts := domain.DefaultPreprocessOpts()
	if req.PreprocessingOptions != nil {
		preprocessOpts = *req.PreprocessingOptions
	}
	textOpts := domain.DefaultTextOpts()
	if req.TextProcessingOptions != nil {
		textOpts = *req.TextProcessingOptions
	}

	result := h.dispatcher.SubmitBatch(c.Request.Context(), req.FilePaths, preprocessOpts, textOpts)
	h.logger.Info("batch OCR complete", zap.String("operation", operation), zap.String("request_id", requestID),
		zap.Int("files_processed", result.FilesProcessed), zap.Int("files_failed", result.FilesFailed))
	c.JSON(http.StatusOK, result)
}

// Video handles POST /ocr/video: a multipart upload or a JSON body naming a
// server-side file_path, sampled frame-by-frame by the Dispatcher.
func (h *OCRHandler) Video(c *gin.Context) {
	const operation = "OCRHandler.Video"
	requestID := utils.GetRequestID(c.Request.Context())

	videoOpts := domain.DefaultVideoOpts()
	preprocessOpts := domain.DefaultPreprocessOpts()
	var path string

	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if fileHeader, err := c.FormFile("file"); err == nil {
			tmpPath, err := persistUpload(fileHeader)
			if err != nil {
				h.respondError(c, operation, requestID, err)
				return
			}
			defer os.Remove(tmpPath)
			path = tmpPath
		} else {
			path = c.PostForm("file_path")
		}
		if raw := c.PostForm("video_options"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &videoOpts); err != nil {
				h.respondError(c, operation, requestID, domain.NewErrInputInvalid("parsing video_options", err))
				return
			}
		}
		if raw := c.PostForm("preprocessing_options"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &preprocessOpts); err != nil {
				h.respondError(c, operation, requestID, domain.NewErrInputInvalid("parsing preprocessing_options", err))
				return
			}
		}
	} else {
		var req videoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.respondError(c, operation, requestID, domain.NewErrInputInvalid("decoding request body", err))
			return
		}
		path = req.FilePath
		if req.VideoOptions != nil {
			videoOpts = *req.VideoOptions
		}
		if req.PreprocessingOptions != nil {
			preprocessOpts = *req.PreprocessingOptions
		}
	}

	if path == "" {
		h.respondError(c, operation, requestID, domain.NewErrInputMissing("file_path"))
		return
	}
	if err := validateExtension(path, domain.VideoExtensions); err != nil {
		h.respondError(c, operation, requestID, err)
		return
	}
	if info, err := os.Stat(path); err != nil {
		h.respondError(c, operation, requestID, domain.NewNotFoundError("file", path))
		return
	} else if err := h.validateSize(path, info.Size()); err != nil {
		h.respondError(c, operation, requestID, err)
		return
	}

	result, err := h.dispatcher.SubmitVideo(c.Request.Context(), path, videoOpts, preprocessOpts)
	if err != nil {
		h.respondError(c, operation, requestID, err)
		return
	}

	h.logger.Info("video OCR complete", zap.String("operation", operation), zap.String("request_id", requestID), zap.Bool("success", result.Success))
	c.JSON(http.StatusOK, result)
}

// respondError maps a domain error to its HTTP status and logs it.
func (h *OCRHandler) respondError(c *gin.Context, operation, requestID string, err error) {
	status := domain.HTTPStatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("operation", operation), zap.String("request_id", requestID), zap.Error(err))
	} else {
		h.logger.Warn("request rejected", zap.String("operation", operation), zap.String("request_id", requestID), zap.Error(err))
	}
	utils.RespondWithError(c, status, err.Error())
}

// validateSize rejects a file larger than config.MaxFileSizeMB.
func (h *OCRHandler) validateSize(name string, size int64) error {
	limit := int64(h.config.MaxFileSizeMB) * 1024 * 1024
	if size > limit {
		return domain.NewErrTooLarge(name, size, limit)
	}
	return nil
}

// validateExtension rejects a filename whose extension is outside allowed.
func validateExtension(name string, allowed []string) error {
	ext := strings.ToLower(extOf(name))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return domain.NewErrUnsupportedFormat(name, ext)
}

func extOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx == -1 {
		return ""
	}
	return name[idx:]
}

// readFileOrNotFound reads a server-side path, translating a missing file
// into the domain NotFound error rather than a generic I/O error.
func readFileOrNotFound(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewNotFoundError("file", path)
		}
		return nil, domain.NewErrTransientIO("reading file", err)
	}
	return data, nil
}

// persistUpload copies a multipart upload to a temp file so the video
// pipeline, which reads videos by path, can operate on it.
func persistUpload(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", domain.NewErrTransientIO("opening uploaded file", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "ocr-upload-*"+extOf(fileHeader.Filename))
	if err != nil {
		return "", domain.NewErrTransientIO("creating temp file", err)
	}
	defer tmp.Close()

	buf, err := io.ReadAll(src)
	if err != nil {
		return "", domain.NewErrTransientIO("reading uploaded file", err)
	}
	if _, err := tmp.Write(buf); err != nil {
		return "", domain.NewErrTransientIO("writing temp file", err)
	}
	return tmp.Name(), nil
}
