package core

import "context"

// Context keys for report options
type contextKey string

const suppressHeaderKey contextKey = "suppressHeader"

// withSuppressHeader sets whether headers should be suppressed in the context
func withSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// WithSuppressHeader marks the context so report runs skip the console header.
// The MCP and HTTP surfaces use this to keep protocol output clean.
func WithSuppressHeader(ctx context.Context) context.Context {
	return withSuppressHeader(ctx)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

const runIDKey contextKey = "runID"

// withRunID stores the history run ID on the context
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// getRunID returns the history run ID if one was recorded
func getRunID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(runIDKey).(int64)
	return id, ok
}
