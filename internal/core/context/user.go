// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"moneta/internal/core/id"
)

// UserContext contains the authenticated owner identity. Every entity in
// the platform is partitioned by this owner; no cross-owner references
// are permitted anywhere in the model.
type UserContext struct {
	UserID id.ID
	Email  string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetOwnerID returns the owner ID from context, or the nil ID when the
// request is unauthenticated.
func GetOwnerID(ctx context.Context) id.ID {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return id.Nil()
}
