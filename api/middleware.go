package api

import (
	"slices"
	"time"

	"github.com/Domenick1991/trypguide/internal/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogger logs one line per request, tagged with the active trace.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			{Key: "method", Value: c.Request.Method},
			{Key: "path", Value: c.FullPath()},
			{Key: "status", Value: c.Writer.Status()},
			{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
		}
		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.IsValid() {
			fields = append(fields,
				logger.Field{Key: "trace_id", Value: sc.TraceID().String()},
				logger.Field{Key: "span_id", Value: sc.SpanID().String()},
			)
		}
		log.Info("request", fields...)
	}
}

// CORS allows the configured browser origins.
func CORS(origins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (slices.Contains(origins, origin) || slices.Contains(origins, "*")) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
