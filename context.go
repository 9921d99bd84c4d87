package hsjwt

import "context"

type claimsKey struct{}

// BindClaims stores verified claims inside the context for downstream consumers.
func BindClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext retrieves claims previously stored with BindClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	if ctx == nil {
		return nil, false
	}
	value := ctx.Value(claimsKey{})
	if value == nil {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok && claims != nil
}
