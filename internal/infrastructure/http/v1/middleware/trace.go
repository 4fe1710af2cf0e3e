package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercadito/internal/core/appctx"
	"mercadito/pkg/logger"
)

var tracer = otel.Tracer("mercadito/http")

// Trace attaches a trace context to every request, opens a span, and
// logs the request outcome.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := appctx.NewTraceContext()
		ctx := appctx.WithTrace(c.Request.Context(), tc)

		ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.FullPath(),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
				attribute.String("request.id", tc.RequestID),
			))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Set("request_id", tc.RequestID)
		c.Header("X-Request-ID", tc.RequestID)

		start := time.Now()
		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
		logger.Info(ctx, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
