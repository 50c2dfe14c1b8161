package middleware

import (
	"context"

	"github.com/crmbase-app/crmbase-backend/pkg/policy"
)

type contextKey string

const (
	ctxUserID       contextKey = "user_id"
	ctxLogin        contextKey = "login"
	ctxCapabilities contextKey = "capabilities"
	ctxAccessID     contextKey = "access_id"
)

func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(int64); ok {
		return v
	}
	return 0
}

func LoginFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxLogin).(string); ok {
		return v
	}
	return ""
}

func CapabilitiesFromContext(ctx context.Context) policy.Capabilities {
	if ctx == nil {
		return policy.Capabilities{}
	}
	if v, ok := ctx.Value(ctxCapabilities).(policy.Capabilities); ok {
		return v
	}
	return policy.Capabilities{}
}

// AccessIDFromContext returns the session identifier of the presented token.
// Logout and self-deletion use it to revoke the active session.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithCapabilities injects the actor's capabilities for downstream handlers.
func WithCapabilities(ctx context.Context, caps policy.Capabilities) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCapabilities, caps)
}

// WithAccessID injects the session identifier into the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}
