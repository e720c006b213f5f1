// internal/dispatcher/dispatcher.go
package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/png"
	"os"
	"time"

	"github.com/stackvity/ocr-server/internal/cache"
	"github.com/stackvity/ocr-server/internal/domain"
	"github.com/stackvity/ocr-server/internal/layout"
	"github.com/stackvity/ocr-server/internal/preprocess"
	"github.com/stackvity/ocr-server/internal/recognizer"
	"github.com/stackvity/ocr-server/internal/video"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Dispatcher is the bounded-concurrency core spec.md §4.1/§5 describes: a
// fixed-size worker pool guards entry into OCR/preprocessing work, a
// separate batch-internal limit prevents one batch from starving the pool,
// and every subjob carries its own deadline.
type Dispatcher struct {
	pool *semaphore.Weighted

	cache      *cache.Cache
	recognizer recognizer.Recognizer
	preprocess *preprocess.Pipeline
	sampler    *video.Sampler
	metrics    *Metrics
	logger     *zap.Logger

	minOCRConfidence  float64
	imageTimeout      time.Duration
	batchItemTimeout  time.Duration
	videoFrameTimeout time.Duration
}

// combinedOpts is the cache key payload: everything that deterministically
// affects an image job's output.
type combinedOpts struct {
	Preprocess domain.PreprocessOpts `json:"preprocess"`
	Text       domain.TextOpts       `json:"text"`
}

// New constructs a Dispatcher. poolSize is the fixed worker-pool capacity
// (spec.md default 8).
func New(
	poolSize int,
	c *cache.Cache,
	r recognizer.Recognizer,
	p *preprocess.Pipeline,
	s *video.Sampler,
	minOCRConfidence float64,
	imageTimeout, batchItemTimeout, videoFrameTimeout time.Duration,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		pool:              semaphore.NewWeighted(int64(poolSize)),
		cache:             c,
		recognizer:        r,
		preprocess:        p,
		sampler:           s,
		metrics:           NewMetrics(),
		logger:            logger.Named("Dispatcher"),
		minOCRConfidence:  minOCRConfidence,
		imageTimeout:      imageTimeout,
		batchItemTimeout:  batchItemTimeout,
		videoFrameTimeout: videoFrameTimeout,
	}
}

// Metrics exposes the running counters for the /metrics endpoint.
func (d *Dispatcher) Metrics() *Metrics { return d.metrics }

// SubmitImage runs fileBytes through the cached Image Pipeline (cache →
// preprocess → recognize → normalize → layout reconstruction) and returns
// the resulting OCRResult. A deadline of imageTimeout is enforced around
// the uncached compute path; a cache hit bypasses it entirely.
func (d *Dispatcher) SubmitImage(ctx context.Context, fileBytes []byte, preprocessOpts domain.PreprocessOpts, textOpts domain.TextOpts) (domain.OCRResult, error) {
	start := time.Now()
	d.metrics.RecordSubmitted()

	if err := d.pool.Acquire(ctx, 1); err != nil {
		return domain.OCRResult{}, ctx.Err()
	}
	defer d.pool.Release(1)

	key, err := cache.Key(fileBytes, combinedOpts{Preprocess: preprocessOpts, Text: textOpts})
	if err != nil {
		return domain.OCRResult{}, domain.NewErrFatal("deriving cache key", err)
	}

	if cached, ok := d.cache.Get(key); ok {
		d.metrics.RecordCacheHit()
		var result domain.OCRResult
		if err := json.Unmarshal(cached, &result); err != nil {
			d.metrics.RecordResult(false, time.Since(start))
			return domain.OCRResult{}, domain.NewErrFatal("decoding cached OCR result", err)
		}
		d.metrics.RecordResult(result.Success, time.Since(start))
		return result, nil
	}
	d.metrics.RecordCacheMiss()

	payload, computeErr, _ := d.cache.GetOrCompute(key, func() ([]byte, error) {
		jobCtx, cancel := context.WithTimeout(ctx, d.imageTimeout)
		defer cancel()
		result := d.runImagePipeline(jobCtx, fileBytes, preprocessOpts, textOpts)
		return json.Marshal(result)
	})

	if computeErr != nil {
		d.metrics.RecordResult(false, time.Since(start))
		return domain.OCRResult{}, computeErr
	}

	var result domain.OCRResult
	if err := json.Unmarshal(payload, &result); err != nil {
		d.metrics.RecordResult(false, time.Since(start))
		return domain.OCRResult{}, domain.NewErrFatal("decoding cached OCR result", err)
	}
	d.metrics.RecordResult(result.Success, time.Since(start))
	return result, nil
}

// runImagePipeline performs the uncached compute path: preprocess, recognize,
// normalize, and reconstruct layout. It never returns an error; failures are
// captured as a FailedOCRResult so batch/video callers can proceed.
func (d *Dispatcher) runImagePipeline(ctx context.Context, fileBytes []byte, preprocessOpts domain.PreprocessOpts, textOpts domain.TextOpts) domain.OCRResult {
	start := time.Now()

	processed, err := d.preprocess.Run(fileBytes, preprocessOpts)
	if err != nil {
		d.logger.Warn("preprocessing failed", zap.Error(err))
		return domain.FailedOCRResult(err.Error())
	}

	select {
	case <-ctx.Done():
		return domain.FailedOCRResult(domain.NewErrProcessingTimeout("image OCR").Error())
	default:
	}

	raw, err := d.recognizer.Recognize(ctx, processed)
	if err != nil {
		d.logger.Warn("recognition failed", zap.Error(err))
		return domain.FailedOCRResult(err.Error())
	}

	words, lines := recognizer.Normalize(raw, d.minOCRConfidence)
	pageWidth := decodedWidth(processed)
	text := layout.Reconstruct(words, pageWidth, textOpts)

	result := domain.NewOCRResult(text, words, lines, time.Since(start))
	return result
}

// decodedWidth returns the pixel width of PNG-encoded image bytes, or 0 if
// it cannot be determined — callers degrade to single-column layout.
func decodedWidth(pngBytes []byte) int {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(pngBytes))
	if err != nil {
		return 0
	}
	return cfg.Width
}

// SubmitBatch resolves each path independently through SubmitImage, subject
// to a batch-internal semaphore of min(8, N_files) so one large batch cannot
// starve the shared pool — spec.md §4.1. Per-file failures never fail the
// whole batch; results preserve input order.
func (d *Dispatcher) SubmitBatch(ctx context.Context, paths []string, preprocessOpts domain.PreprocessOpts, textOpts domain.TextOpts) domain.BatchOCRResult {
	start := time.Now()
	results := make([]domain.OCRResult, len(paths))

	limit := 8
	if len(paths) < limit {
		limit = len(paths)
	}
	if limit < 1 {
		limit = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			itemCtx, cancel := context.WithTimeout(gCtx, d.batchItemTimeout)
			defer cancel()

			fileBytes, err := os.ReadFile(path)
			if err != nil {
				results[i] = domain.FailedOCRResult("File not found")
				return nil
			}

			result, err := d.SubmitImage(itemCtx, fileBytes, preprocessOpts, textOpts)
			if err != nil {
				results[i] = domain.FailedOCRResult(err.Error())
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	processed, failed := 0, 0
	for _, r := range results {
		if r.Success {
			processed++
		} else {
			failed++
		}
	}

	return domain.BatchOCRResult{
		Results:        results,
		FilesProcessed: processed,
		FilesFailed:    failed,
		ProcessingTime: time.Since(start),
	}
}

// SubmitVideo walks the video at path with the Sampler, reusing SubmitImage
// as the per-frame Image Pipeline callback — the "Image Pipeline (reused)"
// arrow in spec.md's system diagram.
func (d *Dispatcher) SubmitVideo(ctx context.Context, path string, videoOpts domain.VideoOpts, preprocessOpts domain.PreprocessOpts) (domain.VideoOCRResult, error) {
	frameOCR := func(frameCtx context.Context, frameBytes []byte, opts domain.PreprocessOpts) (domain.OCRResult, error) {
		return d.SubmitImage(frameCtx, frameBytes, opts, domain.TextOpts{UseAdvanced: false})
	}
	return d.sampler.Process(ctx, path, videoOpts, preprocessOpts, frameOCR)
}
