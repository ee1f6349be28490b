package tracing

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// GinMiddleware starts a server span per request, honoring inbound
// tracecontext headers.
func GinMiddleware(serviceName string) gin.HandlerFunc {
	serviceName = strings.TrimSpace(serviceName)
	if serviceName == "" {
		serviceName = "einvoicing"
	}
	tracer := otel.Tracer(serviceName + "/http")

	return func(c *gin.Context) {
		carrier := propagation.HeaderCarrier(c.Request.Header)
		ctx := ExtractContext(c.Request.Context(), carrier)

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(SafeAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)...)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
			if len(c.Errors) > 0 {
				span.RecordError(SafeError(c.Errors.Last().Err))
			}
		}
		span.End()
	}
}
