// internal/api/handlers/middleware.go
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stackvity/ocr-server/internal/config"
	"github.com/stackvity/ocr-server/internal/utils"
	"go.uber.org/zap"
)

// MiddlewareConfig holds the dependencies the middleware chain needs.
type MiddlewareConfig struct {
	Logger *zap.Logger
	Config *config.Config
}

// MiddlewareSetup returns the middleware chain applied to every request.
func MiddlewareSetup(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		RequestLoggerMiddleware(cfg.Logger)(c)
		c.Next()
	}
}

// RequestLoggerMiddleware stamps each request with a request ID and logs
// method, path, status, and latency once the handler chain completes.
func RequestLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const operation = "RequestLoggerMiddleware"
		requestID := uuid.New().String()
		ctx := context.WithValue(c.Request.Context(), utils.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)

		logger.Info("request processed",
			zap.String("operation", operation),
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("user-agent", c.Request.UserAgent()),
		)
	}
}
