package hsjwt

import (
	"context"
	"testing"
)

func TestClaimsContext(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Fatalf("expected no claims in empty context")
	}
	if _, ok := ClaimsFromContext(nil); ok {
		t.Fatalf("expected no claims in nil context")
	}

	claims := NewClaims()
	claims.Set("name", "alice")
	ctx := BindClaims(context.Background(), claims)
	got, ok := ClaimsFromContext(ctx)
	if !ok || got.Get("name") != "alice" {
		t.Fatalf("unexpected claims: %v %v", got, ok)
	}

	if _, ok := ClaimsFromContext(BindClaims(context.Background(), nil)); ok {
		t.Fatalf("nil claims should not be reported as present")
	}
}
