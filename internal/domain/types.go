// internal/domain/types.go
package domain

import "time"

// ThresholdMethod enumerates the binarization strategies the preprocessing
// pipeline can apply at its threshold stage.
type ThresholdMethod string

const (
	ThresholdNone            ThresholdMethod = "none"
	ThresholdOtsu            ThresholdMethod = "otsu"
	ThresholdAdaptiveGaussian ThresholdMethod = "adaptive_gaussian"
	ThresholdAdaptiveMean    ThresholdMethod = "adaptive_mean"
)

// ReadingOrder enumerates the four block-sort orientations the layout
// reconstructor supports.
type ReadingOrder string

const (
	ReadingOrderLTRTTB ReadingOrder = "ltr_ttb"
	ReadingOrderRTLTTB ReadingOrder = "rtl_ttb"
	ReadingOrderTTBLTR ReadingOrder = "ttb_ltr"
	ReadingOrderTTBRTL ReadingOrder = "ttb_rtl"
)

// PreprocessOpts controls the image-enhancement pipeline. Immutable once
// constructed for a request.
type PreprocessOpts struct {
	EnhanceContrast bool            `json:"enhance_contrast"`
	Denoise         bool            `json:"denoise"`
	ThresholdMethod ThresholdMethod `json:"threshold_method"`
	Morphology      bool            `json:"morphology"`
	Deskew          bool            `json:"deskew"`
	Upscale         bool            `json:"upscale"`
}

// DefaultPreprocessOpts returns the pipeline's conservative defaults:
// quality-analysis-gated denoise/contrast, no forced morphology, deskew and
// upscale on since both are cheap safety nets.
func DefaultPreprocessOpts() PreprocessOpts {
	return PreprocessOpts{
		EnhanceContrast: true,
		Denoise:         true,
		ThresholdMethod: ThresholdAdaptiveGaussian,
		Morphology:      true,
		Deskew:          true,
		Upscale:         true,
	}
}

// TextOpts controls the layout-reconstruction post-processor.
type TextOpts struct {
	UseAdvanced  bool         `json:"use_advanced"`
	ReadingOrder ReadingOrder `json:"reading_order"`
}

// DefaultTextOpts returns the advanced reconstruction path with the most
// common reading order.
func DefaultTextOpts() TextOpts {
	return TextOpts{UseAdvanced: true, ReadingOrder: ReadingOrderLTRTTB}
}

// VideoOpts controls frame sampling and deduplication.
type VideoOpts struct {
	FrameInterval       int     `json:"frame_interval" validate:"min=1"`
	SimilarityThreshold float64 `json:"similarity_threshold" validate:"min=0,max=1"`
	MinConfidence       float64 `json:"min_confidence" validate:"min=0,max=1"`
	MaxFrames           int     `json:"max_frames" validate:"min=1"`
}

// DefaultVideoOpts matches spec.md's adopted SSIM threshold (0.98) and a
// conservative frame budget.
func DefaultVideoOpts() VideoOpts {
	return VideoOpts{
		FrameInterval:       5,
		SimilarityThreshold: 0.98,
		MinConfidence:       0.5,
		MaxFrames:           50,
	}
}

// BBox is an axis-aligned rectangle in integer pixel coordinates.
type BBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is an integer pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Polygon is a 4-point quadrilateral enclosing a recognised token or line.
type Polygon struct {
	Points [4]Point `json:"points"`
}

// BoundingBox computes the axis-aligned envelope of the polygon.
func (p Polygon) BoundingBox() BBox {
	minX, minY := p.Points[0].X, p.Points[0].Y
	maxX, maxY := p.Points[0].X, p.Points[0].Y
	for _, pt := range p.Points[1:] {
		if pt.X < minX {
			minX = pt.X
		}
		if pt.X > maxX {
			maxX = pt.X
		}
		if pt.Y < minY {
			minY = pt.Y
		}
		if pt.Y > maxY {
			maxY = pt.Y
		}
	}
	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// WordDetail is one recognised token.
type WordDetail struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
	Polygon    Polygon `json:"polygon"`
}

// TextLine is one recognised line, carrying its own orientation angle for
// rotated text.
type TextLine struct {
	Text             string  `json:"text"`
	Confidence       float64 `json:"confidence"`
	BBox             BBox    `json:"bbox"`
	Polygon          Polygon `json:"polygon"`
	OrientationAngle float64 `json:"orientation_angle"`
}

// OCRResult is the output of a single image OCR job.
type OCRResult struct {
	Text           string        `json:"text"`
	Confidence     float64       `json:"confidence"`
	ProcessingTime time.Duration `json:"processing_time"`
	WordDetails    []WordDetail  `json:"word_details"`
	TextLines      []TextLine    `json:"text_lines"`
	WordCount      int           `json:"word_count"`
	LineCount      int           `json:"line_count"`
	Success        bool          `json:"success"`
	ErrorMessage   string        `json:"error,omitempty"`
}

// MeanConfidence computes the arithmetic mean of word confidences, or 0 when
// the set is empty — the invariant spec.md §3/§8 requires.
func MeanConfidence(words []WordDetail) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}

// NewOCRResult builds an OCRResult maintaining the word_count/line_count and
// confidence invariants from the supplied words and lines.
func NewOCRResult(text string, words []WordDetail, lines []TextLine, elapsed time.Duration) OCRResult {
	return OCRResult{
		Text:           text,
		Confidence:     MeanConfidence(words),
		ProcessingTime: elapsed,
		WordDetails:    words,
		TextLines:      lines,
		WordCount:      len(words),
		LineCount:      len(lines),
		Success:        true,
	}
}

// FailedOCRResult builds the per-item failure shape used inside batches and
// videos: success=false, explanatory message, zeroed body.
func FailedOCRResult(message string) OCRResult {
	return OCRResult{Success: false, ErrorMessage: message}
}

// BatchOCRResult aggregates per-file OCR results; a batch never fails
// wholesale when individual files fail.
type BatchOCRResult struct {
	Results        []OCRResult   `json:"results"`
	FilesProcessed int           `json:"files_processed"`
	FilesFailed    int           `json:"files_failed"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// VideoOCRResult is the output of a single video OCR job.
type VideoOCRResult struct {
	Text                string        `json:"text"`
	Confidence          float64       `json:"confidence"`
	ProcessingTime      time.Duration `json:"processing_time"`
	FramesProcessed     int           `json:"frames_processed"`
	FramesWithText      int           `json:"frames_with_text"`
	UniqueTextSegments  int           `json:"unique_text_segments"`
	Success             bool          `json:"success"`
	ErrorMessage        string        `json:"error,omitempty"`
}

// CacheEntry is a cached, compressed OCR result keyed by content digest.
type CacheEntry struct {
	Key               string    `json:"key"`
	CompressedPayload []byte    `json:"-"`
	InsertedAt        time.Time `json:"inserted_at"`
}

// DocumentExtractionResult is returned by the document-format adapter
// registry (§6 of spec.md, delegated and not further specified there).
type DocumentExtractionResult struct {
	Text         string            `json:"text"`
	FileType     string            `json:"file_type"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Success      bool              `json:"success"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status    string `json:"status"`
	OCRStatus string `json:"ocr_status"`
}

// SupportedFormats is the /supported_formats response body.
type SupportedFormats struct {
	Images    []string `json:"images"`
	Videos    []string `json:"videos"`
	Documents []string `json:"documents"`
}

// ImageExtensions lists the allow-listed image upload extensions.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".tif", ".webp"}

// VideoExtensions lists the allow-listed video upload extensions.
var VideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv", ".webm", ".m4v"}

// DocumentExtensions lists the allow-listed document extensions.
var DocumentExtensions = []string{".pdf", ".docx", ".txt", ".rtf"}

// MetricsSnapshot is the /metrics response body: running counters plus a
// bounded recent-latency sample.
type MetricsSnapshot struct {
	JobsSubmitted      int64           `json:"jobs_submitted"`
	JobsSucceeded      int64           `json:"jobs_succeeded"`
	JobsFailed         int64           `json:"jobs_failed"`
	CacheHits          int64           `json:"cache_hits"`
	CacheMisses        int64           `json:"cache_misses"`
	RecentLatenciesMS  []float64       `json:"recent_latencies_ms"`
}
