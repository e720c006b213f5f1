// cmd/ocr-server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/stackvity/ocr-server/internal/config"
	"github.com/stackvity/ocr-server/internal/utils"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(context.Background(), ".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(&cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			log.Printf("failed to sync logger during shutdown: %v", syncErr)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("application panicked: %v\nstack trace: %s", r, debug.Stack())
			logger.Error("panic recovered in main", zap.Error(err))
			os.Exit(1)
		}
	}()

	logger.Info("starting OCR server", zap.String("version", "1.0.0"))

	app, cleanup, err := InitializeAPI(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize API", zap.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	if err := app.StartServer(); err != nil {
		logger.Error("API server failed to start", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("service stopped gracefully")
}
