package tokengate

import (
	"context"
	"strings"
	"time"
)

// Identity is the verified principal extracted from a token that passed both
// signature and claims validation. It lives only as long as the request.
type Identity struct {
	Subject   string
	Issuer    string
	Audience  string
	ExpiresAt time.Time
	Claims    map[string]interface{}
}

// HasScope reports whether the space-delimited scope claim contains scope.
func (id *Identity) HasScope(scope string) bool {
	s, _ := id.Claims["scope"].(string)
	for _, part := range strings.Fields(s) {
		if part == scope {
			return true
		}
	}
	return false
}

type identityContextKey struct{}

// WithIdentity returns a context carrying the verified identity. Middleware
// adapters use it to hand the identity to downstream handlers.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the identity attached by the gate middleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	return id, ok
}

func newIdentity(decoded *DecodedToken, audience string) *Identity {
	sub, _ := decoded.Claims["sub"].(string)
	iss, _ := decoded.Claims["iss"].(string)
	exp, _ := numericDate(decoded.Claims["exp"])
	return &Identity{
		Subject:   sub,
		Issuer:    iss,
		Audience:  audience,
		ExpiresAt: exp,
		Claims:    decoded.Claims,
	}
}
