//go:build wireinject
// +build wireinject

// cmd/ocr-server/wire.go
package main

import (
	"context"

	"github.com/google/wire"
	"github.com/stackvity/ocr-server/internal/api"
	"github.com/stackvity/ocr-server/internal/api/handlers"
	"github.com/stackvity/ocr-server/internal/cache"
	"github.com/stackvity/ocr-server/internal/config"
	"github.com/stackvity/ocr-server/internal/dispatcher"
	"github.com/stackvity/ocr-server/internal/documents"
	"github.com/stackvity/ocr-server/internal/preprocess"
	"github.com/stackvity/ocr-server/internal/recognizer"
	"github.com/stackvity/ocr-server/internal/video"
	"go.uber.org/zap"
)

// recognizerSet binds the process-wide Tesseract engine to the Recognizer
// capability every other component depends on.
var recognizerSet = wire.NewSet(
	provideRecognizer,
	wire.Bind(new(recognizer.Recognizer), new(*recognizer.GosseractRecognizer)),
)

// pipelineSet wires the stateless collaborators the Dispatcher composes.
var pipelineSet = wire.NewSet(
	provideCache,
	preprocess.New,
	provideSampler,
	documents.NewRegistry,
)

// dispatcherSet wires the bounded-concurrency core.
var dispatcherSet = wire.NewSet(
	provideDispatcher,
)

// handlerSet wires every HTTP handler plus the aggregating Handler struct.
var handlerSet = wire.NewSet(
	handlers.NewOCRHandler,
	handlers.NewDocumentHandler,
	handlers.NewHealthHandler,
	handlers.NewInfoHandler,
	handlers.NewHandler,
)

// apiSet wires the Gin engine and route table.
var apiSet = wire.NewSet(
	api.NewAPI,
)

// InitializeAPI assembles every component behind the HTTP server from an
// already-loaded Config and Logger.
func InitializeAPI(ctx context.Context, cfg config.Config, logger *zap.Logger) (*api.API, func(), error) {
	panic(wire.Build(
		recognizerSet,
		pipelineSet,
		dispatcherSet,
		handlerSet,
		apiSet,
	))
}
