// Hand-maintained equivalent of the injector Wire would generate from wire.go.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

// cmd/ocr-server/wire_gen.go
package main

import (
	"context"

	"github.com/stackvity/ocr-server/internal/api"
	"github.com/stackvity/ocr-server/internal/api/handlers"
	"github.com/stackvity/ocr-server/internal/config"
	"github.com/stackvity/ocr-server/internal/documents"
	"github.com/stackvity/ocr-server/internal/preprocess"
	"go.uber.org/zap"
)

// InitializeAPI assembles every component behind the HTTP server. This is
// the hand-maintained stand-in for what `wire gen` would emit from wire.go.
func InitializeAPI(ctx context.Context, cfg config.Config, logger *zap.Logger) (*api.API, func(), error) {
	r := provideRecognizer(ctx, cfg, logger)

	c, err := provideCache(cfg, logger)
	if err != nil {
		return nil, func() {}, err
	}

	pipeline := preprocess.New(cfg.MinWidthForOCR, logger)
	sampler := provideSampler(cfg, logger)
	registry := documents.NewRegistry()

	d := provideDispatcher(cfg, c, r, pipeline, sampler, logger)

	ocrHandler := handlers.NewOCRHandler(d, &cfg, logger)
	documentHandler := handlers.NewDocumentHandler(registry, logger)
	healthHandler := handlers.NewHealthHandler(r, logger)
	infoHandler := handlers.NewInfoHandler(d)
	handler := handlers.NewHandler(ocrHandler, documentHandler, healthHandler, infoHandler)

	apiInstance, err := api.NewAPI(handler, &cfg, logger)
	if err != nil {
		return nil, func() {}, err
	}

	cleanup := func() {}
	return apiInstance, cleanup, nil
}
