package app

import (
	"context"
	"fmt"

	"github.com/gridironlabs/squares/internal/config"
	"github.com/gridironlabs/squares/internal/domain/identity"
	"github.com/gridironlabs/squares/internal/usecase"
)

// staticSessionVerifier resolves bearer tokens against the configured token
// table. Fine for a pool run out of one household; swap in a real account
// service behind the same interface if this ever grows users.
type staticSessionVerifier struct {
	tokens map[string]config.SessionToken
}

func newStaticSessionVerifier(tokens map[string]config.SessionToken) *staticSessionVerifier {
	if tokens == nil {
		tokens = make(map[string]config.SessionToken)
	}
	return &staticSessionVerifier{tokens: tokens}
}

func (v *staticSessionVerifier) VerifySession(_ context.Context, token string) (identity.Identity, error) {
	entry, ok := v.tokens[token]
	if !ok {
		return identity.Identity{}, fmt.Errorf("%w: unknown session token", usecase.ErrUnauthorized)
	}
	return identity.Regular(entry.Username, entry.Admin), nil
}
