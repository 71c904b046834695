package httpapi

import (
	"context"

	"github.com/gridironlabs/squares/internal/domain/identity"
)

type contextKey string

const identityContextKey contextKey = "acting_identity"

func withIdentity(ctx context.Context, actor identity.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, actor)
}

// identityFromContext returns the resolved acting identity. A zero identity
// means the request carried no usable credentials; handlers pass it through
// and let the usecase layer decide what needs one.
func identityFromContext(ctx context.Context) identity.Identity {
	actor, _ := ctx.Value(identityContextKey).(identity.Identity)
	return actor
}
