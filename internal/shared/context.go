package shared

import "context"

// Principal identifies the authenticated actor and its organization scope.
// Authentication itself is delegated to the hosting platform; the gateway
// forwards the resolved identity in trusted headers.
type Principal struct {
	UserID         int64
	OrganizationID int64
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
