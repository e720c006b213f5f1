// internal/documents/registry.go
package documents

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/stackvity/ocr-server/internal/domain"
)

// Adapter extracts text from one document format. Implementations are
// opaque collaborators per spec.md §1/§9 — this package only owns the
// extension-keyed registry that selects among them.
type Adapter interface {
	Extract(path string) (domain.DocumentExtractionResult, error)
}

// Registry dispatches to the Adapter registered for a file's extension —
// the "lazy imports become a registered-adapter table" redesign spec.md §9
// calls for, populated once at startup with whichever codecs are compiled
// in.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds the default registry: a real .txt adapter plus typed
// stubs for formats this build does not compile a parser for.
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	r.Register(".txt", textAdapter{})
	r.Register(".pdf", stubAdapter{fileType: "pdf"})
	r.Register(".docx", stubAdapter{fileType: "docx"})
	r.Register(".rtf", stubAdapter{fileType: "rtf"})
	return r
}

// Register installs or replaces the adapter for an extension (case folded,
// leading dot required, e.g. ".pdf").
func (r *Registry) Register(extension string, adapter Adapter) {
	r.adapters[strings.ToLower(extension)] = adapter
}

// Extract looks up the adapter for path's extension and delegates to it.
// An unregistered extension is reported as a failed (not erroring) result,
// matching the per-request failure shape the rest of this domain uses.
func (r *Registry) Extract(path string) (domain.DocumentExtractionResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	adapter, ok := r.adapters[ext]
	if !ok {
		return domain.DocumentExtractionResult{
			FileType:     strings.TrimPrefix(ext, "."),
			Success:      false,
			ErrorMessage: "no adapter registered for extension " + ext,
		}, nil
	}
	return adapter.Extract(path)
}

// textAdapter reads a .txt file verbatim; it is the only format this build
// implements directly rather than stubbing.
type textAdapter struct{}

func (textAdapter) Extract(path string) (domain.DocumentExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.DocumentExtractionResult{
			FileType:     "txt",
			Success:      false,
			ErrorMessage: err.Error(),
		}, nil
	}
	return domain.DocumentExtractionResult{
		Text:     string(data),
		FileType: "txt",
		Success:  true,
	}, nil
}

// stubAdapter represents a document format this build does not compile a
// parser for. It reports a structured, non-erroring failure rather than
// pretending to support the format.
type stubAdapter struct {
	fileType string
}

func (s stubAdapter) Extract(path string) (domain.DocumentExtractionResult, error) {
	return domain.DocumentExtractionResult{
		FileType:     s.fileType,
		Success:      false,
		ErrorMessage: s.fileType + " extraction is not compiled into this build",
	}, nil
}
