// internal/config/config.go
package config

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// Config stores all the configuration settings for the application.
// It uses `mapstructure` tags for automatic unmarshaling from Viper configurations.
// This struct is designed to hold environment-specific and application-wide settings,
// loaded from environment variables and/or a .env file.
type Config struct {
	Environment       string `mapstructure:"ENVIRONMENT"`         // "development", "staging", "production"
	HTTPServerAddress string `mapstructure:"HTTP_SERVER_ADDRESS"` // Address (host:port) for the HTTP server to listen on. Example: ":8080"
	LogLevel          string `mapstructure:"LOG_LEVEL"`           // Logging level for Zap logger (debug, info, warn, error, fatal). Default: "info"
	LogFormat         string `mapstructure:"LOG_FORMAT"`          // Logging format ("text" or "json"). Default: "text"

	WorkerPoolSize   int `mapstructure:"WORKER_POOL_SIZE"`   // Fixed-size worker pool for single-image OCR jobs. Default: 8
	BatchMaxParallel int `mapstructure:"BATCH_MAX_PARALLEL"` // Loaded and defaulted to 8, but not read by the dispatcher, whose batch limit is fixed at min(8, len(files))
	MaxFileSizeMB    int `mapstructure:"MAX_FILE_SIZE_MB"`   // Maximum allowed upload size in megabytes. Default: 200

	ImageTimeout      time.Duration `mapstructure:"IMAGE_TIMEOUT"`       // Deadline for a single image OCR job. Default: 30s
	BatchItemTimeout  time.Duration `mapstructure:"BATCH_ITEM_TIMEOUT"`  // Deadline for one file within a batch job. Default: 60s
	VideoFrameTimeout time.Duration `mapstructure:"VIDEO_FRAME_TIMEOUT"` // Deadline for OCR on one sampled video frame. Default: 45s

	CacheMaxSize int           `mapstructure:"CACHE_MAX_SIZE"` // Maximum number of entries held by the result cache before LRU eviction. Default: 1000
	CacheTTL     time.Duration `mapstructure:"CACHE_TTL"`      // Maximum age of a cache entry before it is treated as a miss. Default: 1h

	MinOCRConfidence float64 `mapstructure:"MIN_OCR_CONFIDENCE"` // Words scored below this confidence are dropped from results. Default: 0.5
	MinWidthForOCR   int     `mapstructure:"MIN_WIDTH_FOR_OCR"`  // Images narrower than this (px) are upscaled before recognition. Default: 700

	TessdataPrefix string `mapstructure:"TESSDATA_PREFIX"` // Directory containing Tesseract language data files
	TesseractLang  string `mapstructure:"TESSERACT_LANG"`  // Recognition language(s) passed to gosseract, e.g. "eng"
}

const DevelopmentEnvironment = "development" // Constant defining the "development" environment string

// LoadConfig reads configuration from environment variables and/or a .env file using Viper.
// It populates the Config struct with values from environment variables, falling back to defaults
// (logged as they're applied) when an optional setting is left unset.
func LoadConfig(ctx context.Context, path string) (config Config, err error) {
	viper.AddConfigPath(path)   // Add the config path to Viper's lookup paths
	viper.SetConfigName(".env") // Set the base name of the config file (without extension) to ".env"
	viper.SetConfigType("env")  // Set the config file type to "env" for .env file format

	viper.AutomaticEnv()      // Enable automatic reading of environment variables
	viper.AllowEmptyEnv(true) // Allow empty environment variables to be read without error

	// Unmarshal only sees keys Viper already knows, so bind every Config key to its env var.
	configType := reflect.TypeOf(Config{})
	for i := 0; i < configType.NumField(); i++ {
		if key := configType.Field(i).Tag.Get("mapstructure"); key != "" {
			if err = viper.BindEnv(key); err != nil {
				return Config{}, fmt.Errorf("failed to bind env var %s: %w", key, err)
			}
		}
	}

	if err = viper.ReadInConfig(); err != nil { // Attempt to read config from the configured paths and file name
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// .env file not found; not a fatal error, proceed with environment variables or defaults
			log.Println("No .env file found, relying on environment variables.")
		} else {
			// Config file was found, but another error occurred during reading or parsing
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err = viper.Unmarshal(&config); err != nil { // Unmarshal the configuration into the Config struct
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.HTTPServerAddress == "" {
		config.HTTPServerAddress = ":8080"
		log.Println("HTTP_SERVER_ADDRESS not set, defaulting to ':8080'")
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
		log.Println("LOG_LEVEL not set, defaulting to 'info'")
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
		log.Println("LOG_FORMAT not set, defaulting to 'text'")
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 8
		log.Println("WORKER_POOL_SIZE not set, defaulting to 8")
	}
	if config.BatchMaxParallel <= 0 {
		config.BatchMaxParallel = 8
		log.Println("BATCH_MAX_PARALLEL not set, defaulting to 8")
	}
	if config.MaxFileSizeMB <= 0 {
		config.MaxFileSizeMB = 200
		log.Println("MAX_FILE_SIZE_MB not set, defaulting to 200")
	}
	if config.ImageTimeout <= 0 {
		config.ImageTimeout = 30 * time.Second
		log.Println("IMAGE_TIMEOUT not set, defaulting to 30s")
	}
	if config.BatchItemTimeout <= 0 {
		config.BatchItemTimeout = 60 * time.Second
		log.Println("BATCH_ITEM_TIMEOUT not set, defaulting to 60s")
	}
	if config.VideoFrameTimeout <= 0 {
		config.VideoFrameTimeout = 45 * time.Second
		log.Println("VIDEO_FRAME_TIMEOUT not set, defaulting to 45s")
	}
	if config.CacheMaxSize <= 0 {
		config.CacheMaxSize = 1000
		log.Println("CACHE_MAX_SIZE not set, defaulting to 1000")
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = time.Hour
		log.Println("CACHE_TTL not set, defaulting to 1h")
	}
	if config.MinOCRConfidence <= 0 {
		config.MinOCRConfidence = 0.5
		log.Println("MIN_OCR_CONFIDENCE not set, defaulting to 0.5")
	}
	if config.MinWidthForOCR <= 0 {
		config.MinWidthForOCR = 700
		log.Println("MIN_WIDTH_FOR_OCR not set, defaulting to 700")
	}
	if config.TesseractLang == "" {
		config.TesseractLang = "eng"
		log.Println("TESSERACT_LANG not set, defaulting to 'eng'")
	}

	// Basic Context Handling Example (for future expansion - not strictly necessary for config loading itself, but good practice)
	select {
	case <-ctx.Done():
		return Config{}, ctx.Err() // Return context error if context is cancelled during config loading
	default:
		// Proceed with normal config loading if context is not cancelled
	}

	return // Return the populated Config struct and nil error for successful config loading
}
