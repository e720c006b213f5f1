// internal/recognizer/gosseract_recognizer.go
package recognizer

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"github.com/stackvity/ocr-server/internal/domain"
	"go.uber.org/zap"
)

// warmupImages are tiny synthetic PNGs run through the engine once at
// startup so the first real request doesn't pay for lazy Tesseract
// allocations. A single pixel is enough to touch the full init path.
var warmupImages = [][]byte{whitePixelPNG()}

// GosseractRecognizer is the single, process-wide Tesseract-backed engine.
// Its native client is not reentrant, so every call to Recognize is
// serialized behind mu — this is the load-bearing mutex spec.md §4.4/§5
// describes, not a defensive afterthought: gosseract.Client genuinely
// cannot be shared across concurrent calls.
type GosseractRecognizer struct {
	mu       sync.Mutex
	init     initState
	lang     string
	dataPath string
	logger   *zap.Logger
	ready    bool
}

// NewGosseractRecognizer constructs an uninitialized recognizer. Init()
// must be called once (typically from the composition root) before serving
// traffic; Recognize also lazily triggers it on first use.
func NewGosseractRecognizer(lang, dataPath string, logger *zap.Logger) *GosseractRecognizer {
	return &GosseractRecognizer{
		lang:     lang,
		dataPath: dataPath,
		logger:   logger.Named("GosseractRecognizer"),
	}
}

// Init performs one-time engine initialization plus the warm-up pass.
// Concurrent callers coalesce onto the same attempt.
func (r *GosseractRecognizer) Init(ctx context.Context) error {
	return r.init.do(func() error {
		const operation = "GosseractRecognizer.Init"
		for _, img := range warmupImages {
			client := r.newClient()
			err := client.SetImageFromBytes(img)
			if err == nil {
				_, err = client.Text()
			}
			client.Close()
			if err != nil {
				r.logger.Error("recognizer warm-up failed", zap.String("operation", operation), zap.Error(err))
				return fmt.Errorf("recognizer warm-up: %w", err)
			}
		}
		r.ready = true
		r.logger.Info("recognizer initialized", zap.String("operation", operation), zap.String("lang", r.lang))
		return nil
	})
}

func (r *GosseractRecognizer) newClient() *gosseract.Client {
	client := gosseract.NewClient()
	if r.dataPath != "" {
		client.TessdataPrefix = &r.dataPath
	}
	if r.lang != "" {
		_ = client.SetLanguage(r.lang)
	}
	return client
}

// Ping reports whether the engine is initialized and ready to serve.
func (r *GosseractRecognizer) Ping(ctx context.Context) error {
	if err := r.Init(ctx); err != nil {
		return domain.NewErrRecognizerUnavailable("tesseract engine not initialized", err)
	}
	if !r.ready {
		return domain.NewErrRecognizerUnavailable("tesseract engine not ready", nil)
	}
	return nil
}

// Recognize serializes a single OCR call against the shared client slot.
func (r *GosseractRecognizer) Recognize(ctx context.Context, imageBytes []byte) (RawResult, error) {
	const operation = "GosseractRecognizer.Recognize"

	if err := r.Init(ctx); err != nil {
		return RawResult{}, domain.NewErrRecognizerUnavailable("tesseract engine not initialized", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case <-ctx.Done():
		return RawResult{}, ctx.Err()
	default:
	}

	client := r.newClient()
	defer client.Close()

	if err := client.SetImageFromBytes(imageBytes); err != nil {
		r.logger.Warn("failed to load image into recognizer", zap.String("operation", operation), zap.Error(err))
		return RawResult{}, domain.NewErrTransientIO("loading image into recognizer", err)
	}

	text, err := client.Text()
	if err != nil {
		r.logger.Warn("recognition failed", zap.String("operation", operation), zap.Error(err))
		return RawResult{}, domain.NewErrTransientIO("running recognition", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		r.logger.Debug("bounding boxes unavailable, returning whole-image text only", zap.String("operation", operation), zap.Error(err))
		return RawResult{
			RecTexts:  []string{text},
			RecScores: []float64{0},
			RecPolys:  [][4]domain.Point{rectToPoly(image.Rect(0, 0, 0, 0))},
		}, nil
	}

	raw := RawResult{
		RecTexts:       make([]string, 0, len(boxes)),
		RecScores:      make([]float64, 0, len(boxes)),
		RecPolys:       make([][4]domain.Point, 0, len(boxes)),
		TextlineAngles: make([]float64, 0, len(boxes)),
	}
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		raw.RecTexts = append(raw.RecTexts, box.Word)
		raw.RecScores = append(raw.RecScores, box.Confidence/100.0)
		raw.RecPolys = append(raw.RecPolys, rectToPoly(box.Box))
		raw.TextlineAngles = append(raw.TextlineAngles, 0)
	}

	return raw, nil
}

func rectToPoly(r image.Rectangle) [4]domain.Point {
	return [4]domain.Point{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Max.Y},
	}
}

// whitePixelPNG returns a minimal 1x1 white PNG, just enough for the
// Tesseract warm-up pass to exercise the full init path without needing a
// real fixture on disk.
func whitePixelPNG() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xde, 0x00, 0x00, 0x00,
		0x0c, 0x49, 0x44, 0x41, 0x54, 0x08, 0xd7, 0x63, 0xf8, 0xff, 0xff, 0x3f,
		0x00, 0x05, 0xfe, 0x02, 0xfe, 0xdc, 0xcc, 0x59, 0xe7, 0x00, 0x00, 0x00,
		0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
	}
}
