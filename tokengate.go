// Package tokengate validates bearer tokens presented to HTTP services
// against the key set published by an OpenID Connect issuer. A TokenGate
// holds one key set cache per process; wrap handlers with Middleware or one
// of the router adapters in RouterMiddlewares to guard routes.
package tokengate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// TokenGate turns an incoming bearer token into a verified identity or a
// rejection. Construct one per process and share it across handlers; the
// embedded key set cache is safe for concurrent use.
type TokenGate struct {
	opts    Options
	cache   *KeySetCache
	metrics *Metrics
	log     *slog.Logger
}

// New creates a gate with its own key set cache from the given options.
func New(opts Options) (*TokenGate, error) {
	if opts.Issuer == "" {
		return nil, errors.New("tokengate: issuer is required")
	}
	if opts.Audience == "" {
		return nil, errors.New("tokengate: audience is required")
	}
	o := opts.withDefaults()
	m := &Metrics{}
	return &TokenGate{
		opts:    o,
		cache:   newKeySetCache(o, m),
		metrics: m,
		log:     o.Logger,
	}, nil
}

// Metrics returns a snapshot of the gate counters.
func (g *TokenGate) Metrics() MetricsSnapshot {
	return g.metrics.Snapshot()
}

// ValidateBearerToken extracts the bearer token from the request and runs
// the full decode, verify and claims validation pipeline.
func (g *TokenGate) ValidateBearerToken(r *http.Request) (*Identity, error) {
	token, err := GetBearerToken(r)
	if err != nil {
		g.metrics.rejected.Add(1)
		return nil, err
	}
	return g.ValidateToken(r.Context(), token)
}

// ValidateToken validates a raw compact token. On an unknown kid it forces
// exactly one key set refresh and retries verification once, so freshly
// rotated keys are picked up without failing the request.
func (g *TokenGate) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	decoded, err := DecodeToken(token)
	if err != nil {
		g.metrics.rejected.Add(1)
		return nil, err
	}
	keys, err := g.cache.Keys(ctx)
	if err != nil {
		g.metrics.rejected.Add(1)
		return nil, err
	}
	err = verifySignature(decoded, keys, g.opts.AllowedAlgs)
	if errors.Is(err, ErrUnknownKey) {
		if keys, rerr := g.cache.Refresh(ctx); rerr == nil {
			err = verifySignature(decoded, keys, g.opts.AllowedAlgs)
		}
	}
	if err != nil {
		g.metrics.rejected.Add(1)
		return nil, err
	}
	if err := validateClaims(decoded.Claims, g.opts.Issuer, g.opts.Audience, time.Now(), g.opts.ClockSkew); err != nil {
		g.metrics.rejected.Add(1)
		return nil, err
	}
	g.metrics.authorized.Add(1)
	return newIdentity(decoded, g.opts.Audience), nil
}

// Middleware guards next with bearer token validation. On success the
// verified identity is attached to the request context; on failure the
// specific reason is logged and the client gets a generic 401, or a 503
// when the key set cannot be served at all.
func (g *TokenGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.ValidateBearerToken(r)
		if err != nil {
			g.log.Info("bearer token rejected",
				"path", r.URL.Path,
				"reason", err)
			status := StatusForError(err)
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// StatusForError maps a validation error to the HTTP status the client
// should see. Every rejection collapses to 401 so validation internals are
// never leaked; only a completely unservable key set surfaces as 503.
func StatusForError(err error) int {
	if errors.Is(err, ErrKeySetUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusUnauthorized
}

// GetBearerToken extracts a bearer token from the request Authorization header
func GetBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}

// RequestHasScope reports whether the request's bearer token carries the
// given scope. Structural decode only; callers still need the gate for
// trust decisions.
func RequestHasScope(scope string, r *http.Request) bool {
	token, err := GetBearerToken(r)
	if err != nil {
		return false
	}
	decoded, err := DecodeToken(token)
	if err != nil {
		return false
	}
	s, _ := decoded.Claims["scope"].(string)
	for _, part := range strings.Fields(s) {
		if part == scope {
			return true
		}
	}
	return false
}
