// internal/utils/http_utils.go
package utils

import (
	"context"

	"github.com/gin-gonic/gin"
)

// contextKey is a private type to avoid context key collisions across packages.
type contextKey string

// RequestIDKey is the key used to store the request ID in the context.
const RequestIDKey contextKey = "requestID"

// RespondWithError sends a JSON error response.  It takes a Gin context,
// an HTTP status code, and an error message (which can be any type).
func RespondWithError(c *gin.Context, code int, message interface{}) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RespondWithJSON sends a JSON response with the provided status code and data.
func RespondWithJSON(c *gin.Context, code int, payload interface{}) {
	c.JSON(code, payload)
}

// GetRequestID retrieves the request ID from the context.  It accepts a
// standard context.Context, not a *gin.Context, so it can be called from
// any layer that only has a plain context.
func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		if Logger != nil {
			Logger.Warn("requestID not found in context")
		}
		return ""
	}
	return requestID
}
