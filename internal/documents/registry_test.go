// internal/documents/registry_test.go
package documents

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stackvity/ocr-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTxtFileReadsContentVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello document"), 0o644))

	r := NewRegistry()
	result, err := r.Extract(path)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "hello document", result.Text)
	assert.Equal(t, "txt", result.FileType)
}

func TestExtractMissingTxtFileReportsFailureNotError(t *testing.T) {
	r := NewRegistry()
	result, err := r.Extract("/does/not/exist.txt")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.ErrorMessage)
}

func TestExtractStubFormatsReportUncompiledFailure(t *testing.T) {
	r := NewRegistry()
	for _, ext := range []string{".pdf", ".docx", ".rtf"} {
		result, err := r.Extract("file" + ext)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.ErrorMessage, "not compiled into this build")
	}
}

func TestExtractUnregisteredExtensionIsAFailureNotAnError(t *testing.T) {
	r := NewRegistry()
	result, err := r.Extract("file.xyz")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "xyz", result.FileType)
}

func TestRegisterOverridesAdapter(t *testing.T) {
	r := NewRegistry()
	r.Register(".pdf", fakeAdapter{result: domain.DocumentExtractionResult{Success: true, Text: "overridden"}})

	result, err := r.Extract("report.PDF")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "overridden", result.Text)
}

type fakeAdapter struct {
	result domain.DocumentExtractionResult
}

func (f fakeAdapter) Extract(path string) (domain.DocumentExtractionResult, error) {
	return f.result, nil
}
