// Package reqid carries a per-request correlation id across service calls.
package reqid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to propagate the id.
const Header = "X-Request-ID"

type ctxKey struct{}

// New returns a fresh request id.
func New() string {
	return uuid.NewString()
}

// With stores id in ctx.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the id stored in ctx, or "".
func From(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
