package utils

import (
	"context"

	"github.com/gin-gonic/gin"
)

type contextKey string

const customContextKey contextKey = "MAILFLEET_CONTEXT"

// CustomContext carries the authenticated caller through service and
// repository layers.
type CustomContext struct {
	UserId    string
	UserEmail string
	ClientIP  string
	UserAgent string
}

func WithCustomContext(ctx context.Context, customContext *CustomContext) context.Context {
	return context.WithValue(ctx, customContextKey, customContext)
}

// WithCustomContextFromGinRequest lifts the identity set by the auth
// middleware into a plain context.Context for downstream layers.
func WithCustomContextFromGinRequest(c *gin.Context) context.Context {
	customContext := &CustomContext{
		UserId:    c.GetString("UserId"),
		UserEmail: c.GetString("UserEmail"),
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	return WithCustomContext(c.Request.Context(), customContext)
}

func GetContext(ctx context.Context) *CustomContext {
	customContext, ok := ctx.Value(customContextKey).(*CustomContext)
	if !ok {
		return new(CustomContext)
	}
	return customContext
}

func GetUserIdFromContext(ctx context.Context) string {
	return GetContext(ctx).UserId
}

func GetUserEmailFromContext(ctx context.Context) string {
	return GetContext(ctx).UserEmail
}

func GetClientIPFromContext(ctx context.Context) string {
	return GetContext(ctx).ClientIP
}

func GetUserAgentFromContext(ctx context.Context) string {
	return GetContext(ctx).UserAgent
}
