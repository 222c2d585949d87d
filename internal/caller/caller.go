// Package caller identifies who is invoking an operation.
//
// A Principal is the address a request acts for. When the request was
// relayed by another party on the principal's behalf, Actor names that
// intermediary (the RFC 8693 "act" claim). The public claim channel only
// accepts direct callers.
package caller

import (
	"context"

	"loot/pkg/domain"
)

// Principal is an authenticated caller.
type Principal struct {
	Address domain.Address
	Actor   string
}

// IsDirect reports whether the principal is calling on its own behalf.
func (p Principal) IsDirect() bool {
	return p.Actor == ""
}

type principalKey struct{}

// WithPrincipal stores the authenticated principal on ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
