// cmd/ocr-server/providers.go
package main

import (
	"context"

	"github.com/stackvity/ocr-server/internal/cache"
	"github.com/stackvity/ocr-server/internal/config"
	"github.com/stackvity/ocr-server/internal/dispatcher"
	"github.com/stackvity/ocr-server/internal/preprocess"
	"github.com/stackvity/ocr-server/internal/recognizer"
	"github.com/stackvity/ocr-server/internal/video"
	"go.uber.org/zap"
)

// provideRecognizer constructs the process-wide Tesseract engine and kicks
// off its warm-up pass so failures surface at startup rather than on the
// first request.
func provideRecognizer(ctx context.Context, cfg config.Config, logger *zap.Logger) *recognizer.GosseractRecognizer {
	r := recognizer.NewGosseractRecognizer(cfg.TesseractLang, cfg.TessdataPrefix, logger)
	if err := r.Init(ctx); err != nil {
		logger.Warn("recognizer warm-up failed at startup; init is not retried, so OCR requests will see RecognizerUnavailable", zap.Error(err))
	}
	return r
}

// provideCache constructs the content-addressed result cache.
func provideCache(cfg config.Config, logger *zap.Logger) (*cache.Cache, error) {
	return cache.New(cfg.CacheMaxSize, cfg.CacheTTL, logger)
}

// provideSampler constructs the video frame sampler.
func provideSampler(cfg config.Config, logger *zap.Logger) *video.Sampler {
	return video.New(cfg.VideoFrameTimeout, logger)
}

// provideDispatcher constructs the bounded-concurrency dispatcher from its
// collaborators and the pool-sizing/timeout settings in Config.
func provideDispatcher(
	cfg config.Config,
	c *cache.Cache,
	r recognizer.Recognizer,
	p *preprocess.Pipeline,
	s *video.Sampler,
	logger *zap.Logger,
) *dispatcher.Dispatcher {
	return dispatcher.New(
		cfg.WorkerPoolSize,
		c,
		r,
		p,
		s,
		cfg.MinOCRConfidence,
		cfg.ImageTimeout,
		cfg.BatchItemTimeout,
		cfg.VideoFrameTimeout,
		logger,
	)
}
