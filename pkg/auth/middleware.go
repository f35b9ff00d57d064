package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

// Identity is the caller as asserted by the gateway. Authentication itself
// happens upstream (the identity provider in front of this service); the
// gateway strips any client-supplied X-User-* headers and installs its own.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

type ctxKey struct{}

const (
	HeaderUserID = "X-User-Id"
	HeaderName   = "X-User-Name"
	HeaderEmail  = "X-User-Email"
)

// Require rejects requests without a gateway-asserted user id.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderUserID)
		if id == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		ident := Identity{
			UserID: id,
			Name:   r.Header.Get(HeaderName),
			Email:  r.Header.Get(HeaderEmail),
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
	})
}

func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, ident)
}

// FromContext returns the caller identity, ok=false outside Require.
func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ctxKey{}).(Identity)
	return ident, ok
}
