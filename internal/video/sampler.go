// internal/video/sampler.go
package video

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/stackvity/ocr-server/internal/domain"
	"github.com/stackvity/ocr-server/internal/textdedup"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// FrameOCR processes one already-preprocessed frame image and returns its
// OCR result. Implemented by whatever calls into the Image Pipeline +
// Recognizer (the dispatcher), injected here to keep this package free of a
// circular dependency.
type FrameOCR func(ctx context.Context, frameBytes []byte, preprocessOpts domain.PreprocessOpts) (domain.OCRResult, error)

// Sampler walks a video at a stride, skips perceptually-redundant frames via
// SSIM, OCRs the survivors, and aggregates their text — spec.md §4.5.
type Sampler struct {
	frameTimeout time.Duration
	logger       *zap.Logger
}

// New constructs a Sampler with the per-frame OCR deadline spec.md §4.1
// assigns to video frames (default 45s).
func New(frameTimeout time.Duration, logger *zap.Logger) *Sampler {
	return &Sampler{frameTimeout: frameTimeout, logger: logger.Named("Sampler")}
}

// Process runs the full video pipeline described in spec.md §4.5 and
// returns the aggregated VideoOCRResult.
func (s *Sampler) Process(ctx context.Context, path string, videoOpts domain.VideoOpts, preprocessOpts domain.PreprocessOpts, ocr FrameOCR) (domain.VideoOCRResult, error) {
	start := time.Now()

	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return domain.VideoOCRResult{}, domain.NewErrTransientIO("opening video", err)
	}
	defer capture.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	var prevThumb gocv.Mat
	hasPrev := false
	defer func() {
		if hasPrev {
			prevThumb.Close()
		}
	}()

	framesProcessed := 0
	framesWithText := 0
	uniqueCount := 0
	n := 0
	var texts []string
	var confidenceSum float64

	for {
		select {
		case <-ctx.Done():
			return domain.VideoOCRResult{}, ctx.Err()
		default:
		}

		if !capture.Read(&frame) || frame.Empty() {
			break
		}
		currentIndex := n
		n++

		if videoOpts.FrameInterval > 1 && currentIndex%videoOpts.FrameInterval != 0 {
			continue
		}

		currThumb := thumbnail(frame)
		isUnique := !hasPrev
		if hasPrev {
			score := ssim(prevThumb, currThumb)
			isUnique = score < videoOpts.SimilarityThreshold
		}
		if !isUnique {
			currThumb.Close()
			continue
		}
		if hasPrev {
			prevThumb.Close()
		}
		prevThumb = currThumb
		hasPrev = true

		frameBytes, err := s.writeTempFrame(frame)
		if err != nil {
			s.logger.Warn("failed to write temp frame, skipping", zap.Error(err))
			continue
		}

		frameCtx, cancel := context.WithTimeout(ctx, s.frameTimeout)
		result, err := ocr(frameCtx, frameBytes, preprocessOpts)
		cancel()

		framesProcessed++
		if err != nil || !result.Success {
			s.logger.Warn("per-frame OCR failed, skipping frame", zap.Error(err))
			continue
		}
		if result.Confidence >= videoOpts.MinConfidence && strings.TrimSpace(result.Text) != "" {
			framesWithText++
			texts = append(texts, result.Text)
			confidenceSum += result.Confidence
		}

		if uniqueCount++; uniqueCount >= videoOpts.MaxFrames {
			break
		}
	}

	deduped := textdedup.Dedup(texts, textdedup.DefaultThreshold)
	combined := strings.Join(deduped, "\n")

	var meanConfidence float64
	if framesWithText > 0 {
		meanConfidence = confidenceSum / float64(framesWithText)
	}

	return domain.VideoOCRResult{
		Text:               combined,
		Confidence:         meanConfidence,
		ProcessingTime:     time.Since(start),
		FramesProcessed:    framesProcessed,
		FramesWithText:     framesWithText,
		UniqueTextSegments: len(deduped),
		Success:            true,
	}, nil
}

// writeTempFrame encodes a frame as PNG bytes and also writes it to a temp
// file, which is always removed before return, even on error — spec.md §4.5
// step 6. Only the bytes are returned; the temp file's path is not.
func (s *Sampler) writeTempFrame(frame gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".png", frame)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	tmp, err := os.CreateTemp("", "ocr-video-frame-*.png")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.GetBytes()); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

