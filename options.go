package tokengate

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/joeshaw/envdecode"
)

// Defaults applied by New when the corresponding option is zero.
const (
	DefaultCacheTTL         = 30 * time.Minute
	DefaultCacheHardCeiling = 4 * time.Hour
	DefaultClockSkew        = 60 * time.Second
)

// httpClient is the client used for discovery and JWKS fetches when the
// caller does not supply one. The timeout bounds every key set fetch.
var httpClient = &http.Client{Timeout: 10 * time.Second}

// Options represents the configuration for the token gate.
type Options struct {
	// Issuer is the expected iss claim and, when JwksURL is empty, the base
	// URL whose well-known endpoint is used to discover the jwks_uri.
	Issuer string
	// Audience is the expected aud claim.
	Audience string
	// JwksURL overrides discovery with an explicit key set endpoint.
	JwksURL string
	// CacheTTL is how long a fetched key set is considered fresh.
	CacheTTL time.Duration
	// CacheHardCeiling is the absolute age past which a previously fetched
	// key set is no longer served even when refreshes keep failing.
	CacheHardCeiling time.Duration
	// ClockSkew is the tolerance applied to exp and nbf checks.
	ClockSkew time.Duration
	// AllowedAlgs restricts accepted signing algorithms. Defaults to RS256.
	AllowedAlgs []string
	// HTTPClient performs discovery and key set fetches.
	HTTPClient *http.Client
	// Logger receives rejection sub-reasons and cache events.
	Logger *slog.Logger
}

type envOptions struct {
	Issuer                  string `env:"TOKENGATE_ISSUER,required"`
	Audience                string `env:"TOKENGATE_AUDIENCE,required"`
	JwksURL                 string `env:"TOKENGATE_JWKS_URL"`
	CacheTTLSeconds         int    `env:"TOKENGATE_CACHE_TTL_SECONDS,default=1800"`
	CacheHardCeilingSeconds int    `env:"TOKENGATE_CACHE_HARD_CEILING_SECONDS,default=14400"`
	ClockSkewSeconds        int    `env:"TOKENGATE_CLOCK_SKEW_SECONDS,default=60"`
}

// OptionsFromEnv builds Options from TOKENGATE_* environment variables.
func OptionsFromEnv() (Options, error) {
	var e envOptions
	if err := envdecode.StrictDecode(&e); err != nil {
		return Options{}, err
	}
	return Options{
		Issuer:           e.Issuer,
		Audience:         e.Audience,
		JwksURL:          e.JwksURL,
		CacheTTL:         time.Duration(e.CacheTTLSeconds) * time.Second,
		CacheHardCeiling: time.Duration(e.CacheHardCeilingSeconds) * time.Second,
		ClockSkew:        time.Duration(e.ClockSkewSeconds) * time.Second,
	}, nil
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.CacheHardCeiling <= 0 {
		o.CacheHardCeiling = DefaultCacheHardCeiling
	}
	if o.ClockSkew <= 0 {
		o.ClockSkew = DefaultClockSkew
	}
	if len(o.AllowedAlgs) == 0 {
		o.AllowedAlgs = []string{"RS256"}
	}
	if o.HTTPClient == nil {
		o.HTTPClient = httpClient
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
