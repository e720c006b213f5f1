// internal/api/handlers/document_handler_test.go
package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stackvity/ocr-server/internal/documents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func jsonRequest(method, path string, body []byte) (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func TestDocumentExtractReturnsTextForKnownFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("extracted content"), 0o644))

	h := NewDocumentHandler(documents.NewRegistry(), zap.NewNop())
	w, c := jsonRequest(http.MethodPost, "/extract/document", []byte(`{"file_path":"`+path+`"}`))
	h.Extract(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "extracted content")
}

func TestDocumentExtractRejectsMissingFilePath(t *testing.T) {
	h := NewDocumentHandler(documents.NewRegistry(), zap.NewNop())
	w, c := jsonRequest(http.MethodPost, "/extract/document", []byte(`{}`))
	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentExtractRejectsUnsupportedExtension(t *testing.T) {
	h := NewDocumentHandler(documents.NewRegistry(), zap.NewNop())
	w, c := jsonRequest(http.MethodPost, "/extract/document", []byte(`{"file_path":"report.exe"}`))
	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentExtractReturns404ForMissingFile(t *testing.T) {
	h := NewDocumentHandler(documents.NewRegistry(), zap.NewNop())
	w, c := jsonRequest(http.MethodPost, "/extract/document", []byte(`{"file_path":"/does/not/exist.txt"}`))
	h.Extract(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentExtractRejectsMalformedJSON(t *testing.T) {
	h := NewDocumentHandler(documents.NewRegistry(), zap.NewNop())
	w, c := jsonRequest(http.MethodPost, "/extract/document", []byte(`{not json`))
	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
