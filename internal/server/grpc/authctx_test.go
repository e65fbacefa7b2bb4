package grpcserver

import (
	"context"
	"testing"

	"github.com/nagarrakshak/caseledger/internal/access"
	"github.com/nagarrakshak/caseledger/internal/model"
)

func TestWithPrincipal_And_PrincipalFromCtx(t *testing.T) {
	t.Parallel()

	if _, ok := PrincipalFromCtx(context.Background()); ok {
		t.Fatalf("expected no principal in empty ctx")
	}

	want := access.NewPrincipal(model.Identity{Subject: "off-a", Name: "Officer A", Role: model.RoleOfficer})
	ctx := WithPrincipal(context.Background(), want)

	got, ok := PrincipalFromCtx(ctx)
	if !ok {
		t.Fatalf("expected principal in ctx")
	}
	if got != want {
		t.Fatalf("mismatch: got %+v, want %+v", got, want)
	}

	type ctxKey string
	const principalKey ctxKey = "cl.principal"
	bad := context.WithValue(context.Background(), principalKey, "not-a-principal")
	if _, ok := PrincipalFromCtx(bad); ok {
		t.Fatalf("expected miss on wrong typed value")
	}
}
