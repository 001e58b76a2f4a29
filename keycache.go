package tokengate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// KeySet is an immutable snapshot of the keys published by the issuer.
// Snapshots are replaced wholesale on refresh; readers never observe a
// partially updated set.
type KeySet struct {
	Keys      []JSONWebKeys
	fetchedAt time.Time
}

// Key returns the key with the given kid, or nil when absent.
func (s *KeySet) Key(kid string) *JSONWebKeys {
	for i := range s.Keys {
		if s.Keys[i].Kid == kid {
			return &s.Keys[i]
		}
	}
	return nil
}

// KeySetCache serves the issuer's key set from memory, refetching it at most
// once per TTL window. A stale cache triggers a single fetch shared by all
// concurrent callers; while refreshes fail, the last-known set is served
// until it ages past the hard ceiling.
type KeySetCache struct {
	issuer  string
	jwksURL string
	ttl     time.Duration
	ceiling time.Duration
	client  *http.Client
	log     *slog.Logger
	metrics *Metrics

	now      func() time.Time
	group    singleflight.Group
	current  atomic.Pointer[KeySet]
	resolved atomic.Pointer[string]
}

func newKeySetCache(o Options, m *Metrics) *KeySetCache {
	return &KeySetCache{
		issuer:  o.Issuer,
		jwksURL: o.JwksURL,
		ttl:     o.CacheTTL,
		ceiling: o.CacheHardCeiling,
		client:  o.HTTPClient,
		log:     o.Logger,
		metrics: m,
		now:     time.Now,
	}
}

// Keys returns the current key set, fetching when the cached one is stale or
// absent. The fresh path performs no I/O.
func (c *KeySetCache) Keys(ctx context.Context) (*KeySet, error) {
	if ks := c.current.Load(); ks != nil && c.now().Sub(ks.fetchedAt) < c.ttl {
		c.metrics.cacheHits.Add(1)
		return ks, nil
	}
	return c.refresh(ctx, false)
}

// Refresh forces a fetch regardless of freshness. Used by the gate when a
// token references a kid the cached set does not contain (key rotation).
func (c *KeySetCache) Refresh(ctx context.Context) (*KeySet, error) {
	return c.refresh(ctx, true)
}

func (c *KeySetCache) refresh(ctx context.Context, force bool) (*KeySet, error) {
	start := c.current.Load()
	v, err, _ := c.group.Do("jwks", func() (interface{}, error) {
		cur := c.current.Load()
		if cur != nil && cur != start {
			// Replaced while this caller was queued.
			return cur, nil
		}
		if !force && cur != nil && c.now().Sub(cur.fetchedAt) < c.ttl {
			return cur, nil
		}
		ks, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.current.Store(ks)
		return ks, nil
	})
	if err != nil {
		c.metrics.fetchFailures.Add(1)
		if prev := c.current.Load(); prev != nil && c.now().Sub(prev.fetchedAt) < c.ceiling {
			c.metrics.degradedServes.Add(1)
			c.log.Warn("serving last-known key set after fetch failure",
				"error", err,
				"age", c.now().Sub(prev.fetchedAt).Round(time.Second))
			return prev, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}
	return v.(*KeySet), nil
}

func (c *KeySetCache) fetch(ctx context.Context) (*KeySet, error) {
	endpoint, err := c.endpoint(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching key set: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching key set: unexpected status %d", resp.StatusCode)
	}
	var jwks Jwks
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("decoding key set: %w", err)
	}
	c.metrics.fetches.Add(1)
	return &KeySet{Keys: jwks.Keys, fetchedAt: c.now()}, nil
}

// endpoint returns the configured jwks URL, resolving it once through the
// issuer's well known endpoint when not set explicitly.
func (c *KeySetCache) endpoint(ctx context.Context) (string, error) {
	if c.jwksURL != "" {
		return c.jwksURL, nil
	}
	if u := c.resolved.Load(); u != nil {
		return *u, nil
	}
	wke := strings.TrimSuffix(c.issuer, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wke, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching openid configuration: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching openid configuration: unexpected status %d", resp.StatusCode)
	}
	var cfg OpenIDConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return "", fmt.Errorf("decoding openid configuration: %w", err)
	}
	if cfg.JwksURI == "" {
		return "", fmt.Errorf("openid configuration at %s has no jwks_uri", wke)
	}
	c.resolved.Store(&cfg.JwksURI)
	return cfg.JwksURI, nil
}
