package authctx

import (
	"context"

	"github.com/adhub/backend/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// New returns a context carrying the resolved identity
// The value is a copy, downstream consumers cannot mutate what others see
func New(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// FromContext extracts the identity, ok is false for anonymous requests
func FromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}
