// Package context carries log correlation fields through request contexts.
package context

import (
	"context"

	"github.com/smallbiznis/robobooks/internal/orgcontext"
)

type requestIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

// OrgIDFromContext returns the active organization as a string, or "".
func OrgIDFromContext(ctx context.Context) string {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return ""
	}
	return orgID.String()
}
