package tokengate

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// TokenHeader is the decoded JOSE header of a compact token.
type TokenHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Typ string `json:"typ,omitempty"`
}

// DecodedToken carries the structural parts of a compact token before any
// trust decision has been made. SigningInput is the exact byte sequence the
// signature covers.
type DecodedToken struct {
	Header       TokenHeader
	Claims       map[string]interface{}
	Signature    []byte
	SigningInput string
}

// DecodeToken splits a compact token into header, claims and signature.
// It is purely structural: no key lookup, no signature or claims checks.
// Every failure wraps ErrMalformedToken.
func DecodeToken(token string) (*DecodedToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	headerRaw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header segment: %v", ErrMalformedToken, err)
	}
	var header TokenHeader
	if err := json.Unmarshal(headerRaw, &header); err != nil {
		return nil, fmt.Errorf("%w: header segment: %v", ErrMalformedToken, err)
	}
	if header.Alg == "" || header.Kid == "" {
		return nil, fmt.Errorf("%w: header missing alg or kid", ErrMalformedToken)
	}
	claimsRaw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: claims segment: %v", ErrMalformedToken, err)
	}
	var claims map[string]interface{}
	if err := json.Unmarshal(claimsRaw, &claims); err != nil {
		return nil, fmt.Errorf("%w: claims segment: %v", ErrMalformedToken, err)
	}
	for _, required := range []string{"sub", "exp"} {
		if _, ok := claims[required]; !ok {
			return nil, fmt.Errorf("%w: missing %s claim", ErrMalformedToken, required)
		}
	}
	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature segment: %v", ErrMalformedToken, err)
	}
	return &DecodedToken{
		Header:       header,
		Claims:       claims,
		Signature:    signature,
		SigningInput: parts[0] + "." + parts[1],
	}, nil
}
