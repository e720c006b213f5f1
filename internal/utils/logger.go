// internal/utils/logger.go
package utils

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/stackvity/ocr-server/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger // Global logger instance

func init() {
	// We initialize the global Logger in init() so it is available as soon
	// as the package is imported, before any explicit wiring happens.
	cfg, err := config.LoadConfig(context.Background(), ".")
	if err != nil {
		log.Printf("WARNING: Failed to load config, using default logger: %v", err)
		Logger, _ = zap.NewDevelopment()
	} else {
		Logger, err = NewLogger(&cfg)
		if err != nil {
			log.Printf("WARNING: Failed to create logger, using default logger: %v", err)
			Logger, _ = zap.NewDevelopment()
		}
	}
}

// NewLogger creates a new Zap logger based on the provided configuration.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var loggerConfig zap.Config

	if os.Getenv("ENVIRONMENT") == "production" {
		loggerConfig = zap.NewProductionConfig()
		loggerConfig.Sampling = nil // Disable sampling in production to capture ALL logs
	} else {
		loggerConfig = zap.NewDevelopmentConfig()
		loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logLevel, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	loggerConfig.Level = zap.NewAtomicLevelAt(logLevel)

	loggerConfig.EncoderConfig.TimeKey = "timestamp"
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.LogFormat == "json" {
		loggerConfig.Encoding = "json"
	} else {
		loggerConfig.Encoding = "console"
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}
