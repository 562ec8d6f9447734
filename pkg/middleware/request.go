package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/errors"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
)

// Context keys
const (
	ContextKeyRequestID     = "requestId"
	ContextKeyCorrelationID = "correlationId"
)

// HTTP header names
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

type trackedID struct {
	header string
	key    string
	attach func(context.Context, string) context.Context
}

// The correlation id is what outbox events end up carrying
var trackedIDs = []trackedID{
	{header: HeaderRequestID, key: ContextKeyRequestID, attach: logging.ContextWithRequestID},
	{header: HeaderCorrelationID, key: ContextKeyCorrelationID, attach: logging.ContextWithCorrelationID},
}

// RequestIDs echoes or mints the request and correlation ids. Each id is set on the gin
// context, the response headers and the request context.
func RequestIDs() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		for _, id := range trackedIDs {
			value := c.GetHeader(id.header)
			if value == "" {
				value = uuid.NewString()
			}
			c.Set(id.key, value)
			c.Header(id.header, value)
			ctx = id.attach(ctx, value)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// AccessLog logs one record per request except for the skipped paths
func AccessLog(logger *logging.Logger, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger.HTTPRequest(c.Request.Context(),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			c.Request.UserAgent(),
		)
	}
}

// Recovery turns panics into a 500 with the API error envelope
func Recovery(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Panic(c.Request.Context(), recovered)
				abortWith(c, errors.ErrInternal("An unexpected error occurred"))
			}
		}()
		c.Next()
	}
}

// GetRequestID extracts request ID from context
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID extracts correlation ID from context
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}
