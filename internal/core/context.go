package core

import "context"

type contextKey struct{}

// ClientInfo identifies the caller behind a request for session
// ownership and action logging.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// ContextWithClient attaches caller details to ctx.
func ContextWithClient(ctx context.Context, c ClientInfo) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ClientFromContext returns the caller details attached to ctx, or the
// zero value.
func ClientFromContext(ctx context.Context) ClientInfo {
	c, _ := ctx.Value(contextKey{}).(ClientInfo)
	return c
}
