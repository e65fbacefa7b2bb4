package grpcserver

import (
	"context"

	"github.com/nagarrakshak/caseledger/internal/access"
)

type ctxKey string

const principalKey ctxKey = "cl.principal"

// WithPrincipal stores the authenticated caller in context.
func WithPrincipal(ctx context.Context, p access.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromCtx fetches the caller stored by AuthUnary.
func PrincipalFromCtx(ctx context.Context) (access.Principal, bool) {
	p, ok := ctx.Value(principalKey).(access.Principal)
	return p, ok
}
