// internal/domain/errors.go
package domain

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// httpStatuser lets the handler layer map any domain error to a response
// code without a type switch.
type httpStatuser interface {
	HTTPStatus() int
}

// HTTPStatusFor returns the status code an error maps to, falling back to
// 500 for anything that doesn't implement httpStatuser.
func HTTPStatusFor(err error) int {
	if hs, ok := err.(httpStatuser); ok {
		return hs.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// ErrInputMissing is returned when a required request field is absent.
type ErrInputMissing struct {
	Field  string
	logger *zap.Logger
}

func (e *ErrInputMissing) Error() string {
	if e.logger != nil {
		e.logger.Debug("input missing error", zap.String("field", e.Field))
	}
	return fmt.Sprintf("required field %q is missing", e.Field)
}
func (e *ErrInputMissing) HTTPStatus() int { return http.StatusBadRequest }
func (e *ErrInputMissing) Is(target error) bool {
	_, ok := target.(*ErrInputMissing)
	return ok
}
func (e *ErrInputMissing) SetLogger(logger *zap.Logger) { e.logger = logger }
func NewErrInputMissing(field string) *ErrInputMissing {
	return &ErrInputMissing{Field: field}
}

// ErrInputInvalid is returned for malformed JSON or an unrecognised enum value.
type ErrInputInvalid struct {
	Message string
	Err     error
	logger  *zap.Logger
}

func (e *ErrInputInvalid) Error() string {
	if e.logger != nil {
		e.logger.Debug("input invalid error", zap.String("message", e.Message), zap.Error(e.Err))
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}
func (e *ErrInputInvalid) Unwrap() error   { return e.Err }
func (e *ErrInputInvalid) HTTPStatus() int { return http.StatusBadRequest }
func (e *ErrInputInvalid) Is(target error) bool {
	_, ok := target.(*ErrInputInvalid)
	return ok
}
func (e *ErrInputInvalid) SetLogger(logger *zap.Logger) { e.logger = logger }
func NewErrInputInvalid(message string, err error) *ErrInputInvalid {
	return &ErrInputInvalid{Message: message, Err: err}
}

// NotFoundError is returned when file_path does not point to an existing file.
type NotFoundError struct {
	Resource string
	ID       string
	logger   *zap.Logger
}

func (e *NotFoundError) Error() string {
	if e.logger != nil {
		e.logger.Debug("not found error", zap.String("resource", e.Resource), zap.String("id", e.ID))
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}
func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
func (e *NotFoundError) SetLogger(logger *zap.Logger) { e.logger = logger }
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// ErrTooLarge is returned when an uploaded file exceeds MaxFileSizeMB.
type ErrTooLarge struct {
	Filename string
	Size     int64
	Limit    int64
	logger   *zap.Logger
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("file %q (%d bytes) exceeds the %d byte limit", e.Filename, e.Size, e.Limit)
}
func (e *ErrTooLarge) HTTPStatus() int { return http.StatusRequestEntityTooLarge }
func (e *ErrTooLarge) Is(target error) bool {
	_, ok := target.(*ErrTooLarge)
	return ok
}
func (e *ErrTooLarge) SetLogger(logger *zap.Logger) { e.logger = logger }
func NewErrTooLarge(filename string, size, limit int64) *ErrTooLarge {
	return &ErrTooLarge{Filename: filename, Size: size, Limit: limit}
}

// ErrUnsupportedFormat is returned when a file's extension is outside the allowlist.
type ErrUnsupportedFormat struct {
	Filename  string
	Extension string
	logger    *zap.Logger
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported format %q for file %q", e.Extension, e.Filename)
}
func (e *ErrUnsupportedFormat) HTTPStatus() int { return http.StatusBadRequest }
func (e *ErrUnsupportedFormat) Is(target error) bool {
	_, ok := target.(*ErrUnsupportedFormat)
	return ok
}
func (e *ErrUnsupportedFormat) SetLogger(logger *zap.Logger) { e.logger = logger }
func NewErrUnsupportedFormat(filename, ext string) *ErrUnsupportedFormat {
	return &ErrUnsupportedFormat{Filename: filename, Extension: ext}
}

// ErrRecognizerUnavailable means the OCR engine failed to initialise or is not ready.
// It is surfaced as a per-request failure result, never as a hard service error —
// health and metrics endpoints keep serving regardless.
type ErrRecognizerUnavailable struct {
	Message string
	Err     error
	logger  *zap.Logger
}

func (e *ErrRecognizerUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recognizer unavailable: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("recognizer unavailable: %s", e.Message)
}
func (e *ErrRecognizerUnavailable) Unwrap() error   { return e.Err }
func (e *ErrRecognizerUnavailable) HTTPStatus() int { return http.StatusOK }
func (e *ErrRecognizerUnavailable) Is(target error) bool {
	_, ok := target.(*ErrRecognizerUnavailable)
	return ok
}
func (e *ErrRecognizerUnavailable) SetLogger(logger *zap.Logger) { e.logger = logger }
func NewErrRecognizerUnavailable(message string, err error) *ErrRecognizerUnavailable {
	return &ErrRecognizerUnavailable{Message: message, Err: err}
}

// ErrProcessingTimeout means a per-file/per-frame deadline expired.
type ErrProcessingTimeout struct {
	Operation string
	logger    *zap.Logger
}

func (e *ErrProcessingTimeout) Error() string {
	return fmt.Sprintf("%s timed out", e.Operation)
}
func (e *ErrProcessingTimeout) HTTPStatus() int { return http.StatusOK }
func (e *ErrProcessingTimeout) Is(target error) bool {
	_, ok := target.(*ErrProcessingTimeout)
	return ok
}
func (e *ErrProcessingTimeout) SetLogger(logger *zap.Logger) { e.logger = logger }
func NewErrProcessingTimeout(operation string) *ErrProcessingTimeout {
	return &ErrProcessingTimeout{Operation: operation}
}

// ErrTransientIO covers temp-file and video-decode failures: logged, surfaced
// as a per-file failure result, never a hard service error.
type ErrTransientIO struct {
	Message string
	Err     error
	logger  *zap.Logger
}

func (e *ErrTransientIO) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient I/O error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("transient I/O error: %s", e.Message)
}
func (e *ErrTransientIO) Unwrap() error   { return e.Err }
func (e *ErrTransientIO) HTTPStatus() int { return http.StatusOK }
func (e *ErrTransientIO) Is(target error) bool {
	_, ok := target.(*ErrTransientIO)
	return ok
}
func (e *ErrTransientIO) SetLogger(logger *zap.Logger) { e.logger = logger }
func NewErrTransientIO(message string, err error) *ErrTransientIO {
	return &ErrTransientIO{Message: message, Err: err}
}

// ErrFatal covers unexpected panics recovered at the request boundary.
type ErrFatal struct {
	Message string
	Err     error
	logger  *zap.Logger
}

func (e *ErrFatal) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fatal error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("fatal error: %s", e.Message)
}
func (e *ErrFatal) Unwrap() error   { return e.Err }
func (e *ErrFatal) HTTPStatus() int { return http.StatusInternalServerError }
func (e *ErrFatal) Is(target error) bool {
	_, ok := target.(*ErrFatal)
	return ok
}
func (e *ErrFatal) SetLogger(logger *zap.Logger) { e.logger = logger }
func NewErrFatal(message string, err error) *ErrFatal {
	return &ErrFatal{Message: message, Err: err}
}
