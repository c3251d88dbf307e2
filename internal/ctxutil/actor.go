// Package ctxutil carries request-scoped values through context.
// It has no internal dependencies so any package can import it.
package ctxutil

import "context"

// ActorKey is the context key for the acting user's ID.
type ActorKey struct{}

// RequestIDKey is the context key for the request ID.
type RequestIDKey struct{}

// WithActorID returns a context carrying the actor ID.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorKey{}, actorID)
}

// ActorFromContext returns the actor ID, or "" if none is set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ActorKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, id)
}

// RequestIDFromContext returns the request ID, or "" if none is set.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey{}).(string); ok {
		return v
	}
	return ""
}
