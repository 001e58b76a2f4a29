package tokengate

import (
	"encoding/json"
	"fmt"
	"time"
)

// validateClaims checks the standard claims against the configured issuer
// and audience. Rules run in order and the first failure is reported. Pure.
func validateClaims(claims map[string]interface{}, issuer, audience string, now time.Time, skew time.Duration) error {
	exp, ok := numericDate(claims["exp"])
	if !ok {
		return fmt.Errorf("%w: non-numeric exp claim", ErrMalformedToken)
	}
	if !exp.After(now.Add(-skew)) {
		return fmt.Errorf("%w: at %s", ErrTokenExpired, exp.UTC().Format(time.RFC3339))
	}
	if raw, present := claims["nbf"]; present {
		nbf, ok := numericDate(raw)
		if !ok {
			return fmt.Errorf("%w: non-numeric nbf claim", ErrMalformedToken)
		}
		if nbf.After(now.Add(skew)) {
			return fmt.Errorf("%w: until %s", ErrTokenNotYetValid, nbf.UTC().Format(time.RFC3339))
		}
	}
	if iss, _ := claims["iss"].(string); iss != issuer {
		return fmt.Errorf("%w: got %q", ErrIssuerMismatch, iss)
	}
	if !audienceContains(claims["aud"], audience) {
		return ErrAudienceMismatch
	}
	return nil
}

// numericDate accepts the JSON encodings a NumericDate claim can decode to.
func numericDate(v interface{}) (time.Time, bool) {
	switch n := v.(type) {
	case float64:
		return time.Unix(int64(n), 0), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(int64(f), 0), true
	}
	return time.Time{}, false
}

// audienceContains handles both the string and array encodings of aud.
func audienceContains(aud interface{}, want string) bool {
	switch v := aud.(type) {
	case string:
		return v == want
	case []interface{}:
		for _, e := range v {
			if s, ok := e.(string); ok && s == want {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if s == want {
				return true
			}
		}
	}
	return false
}
