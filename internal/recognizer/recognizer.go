// internal/recognizer/recognizer.go
package recognizer

import (
	"context"
	"sync"

	"github.com/stackvity/ocr-server/internal/domain"
)

// RawResult is the capability contract spec.md §4.4 describes: the raw,
// parallel-array shape a native recognition engine hands back before
// normalization into WordDetail/TextLine.
type RawResult struct {
	RecTexts        []string
	RecScores       []float64
	RecPolys        [][4]domain.Point
	TextlineAngles  []float64
}

// Recognizer wraps a single, process-wide text recognition engine behind a
// stable capability. Exactly one implementation is constructed per process;
// concurrent callers share it and are serialized internally.
type Recognizer interface {
	// Recognize runs OCR over a decoded image buffer (PNG-encoded bytes) and
	// returns the raw engine output.
	Recognize(ctx context.Context, imageBytes []byte) (RawResult, error)
	// Ping reports whether the engine completed initialization successfully.
	Ping(ctx context.Context) error
}

// Normalize converts a RawResult into WordDetail/TextLine slices, dropping
// any word scoring below minConfidence — the normalization step spec.md
// §4.4 requires of every Recognizer adapter.
func Normalize(raw RawResult, minConfidence float64) ([]domain.WordDetail, []domain.TextLine) {
	words := make([]domain.WordDetail, 0, len(raw.RecTexts))
	lines := make([]domain.TextLine, 0, len(raw.RecTexts))

	for i, text := range raw.RecTexts {
		if i >= len(raw.RecScores) || i >= len(raw.RecPolys) {
			break
		}
		score := raw.RecScores[i]
		if score < minConfidence {
			continue
		}
		poly := domain.Polygon{Points: raw.RecPolys[i]}
		bbox := poly.BoundingBox()

		angle := 0.0
		if i < len(raw.TextlineAngles) {
			angle = raw.TextlineAngles[i]
		}

		words = append(words, domain.WordDetail{
			Text:       text,
			Confidence: score,
			BBox:       bbox,
			Polygon:    poly,
		})
		lines = append(lines, domain.TextLine{
			Text:             text,
			Confidence:       score,
			BBox:             bbox,
			Polygon:          poly,
			OrientationAngle: angle,
		})
	}

	return words, lines
}

// initState tracks one-time, mutex-coalesced initialization shared by every
// Recognizer implementation in this package.
type initState struct {
	once sync.Once
	err  error
}

func (s *initState) do(fn func() error) error {
	s.once.Do(func() {
		s.err = fn()
	})
	return s.err
}
