package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go/log"

	"github.com/mailfleet/mailfleet/internal/tracing"
	"github.com/mailfleet/mailfleet/internal/utils"
)

// TracingMiddleware opens a span per request and swaps the request
// context for one carrying the caller identity, so service and
// repository spans downstream get tagged without touching gin.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(
			utils.WithCustomContextFromGinRequest(c),
			c.Request.Method+" "+c.FullPath(),
			c.Request.Header,
		)
		defer span.Finish()

		tracing.SetDefaultRestSpanTags(ctx, span)
		if id := c.Param("id"); id != "" {
			tracing.TagEntity(span, id)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if c.Writer.Status() >= 400 {
			span.SetTag("error", true)
			span.LogFields(log.Int("http.status_code", c.Writer.Status()))
		}
	}
}
