package tokengate

import "errors"

var (
	// ErrMissingToken indicates the request carried no Authorization header.
	ErrMissingToken = errors.New("no bearer token in request")
	// ErrMalformedHeader indicates the Authorization header is not of the Bearer {token} shape.
	ErrMalformedHeader = errors.New("authorization header format must be Bearer {token}")
	// ErrMalformedToken indicates the token does not have the expected compact structure.
	ErrMalformedToken = errors.New("malformed token")
	// ErrUnknownKey indicates no key in the current key set matches the token's kid.
	ErrUnknownKey = errors.New("no matching key in key set")
	// ErrInvalidSignature indicates the token signature did not verify against the matched key.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrAlgorithmMismatch indicates the token's signing algorithm is not an accepted one.
	ErrAlgorithmMismatch = errors.New("unexpected signing algorithm")
	// ErrTokenExpired indicates the exp claim is in the past beyond clock-skew tolerance.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenNotYetValid indicates the nbf claim is in the future beyond clock-skew tolerance.
	ErrTokenNotYetValid = errors.New("token not yet valid")
	// ErrIssuerMismatch indicates the iss claim does not match the configured issuer.
	ErrIssuerMismatch = errors.New("issuer mismatch")
	// ErrAudienceMismatch indicates the aud claim does not contain the configured audience.
	ErrAudienceMismatch = errors.New("audience mismatch")
	// ErrKeySetUnavailable indicates the key set cache could not serve any keys.
	ErrKeySetUnavailable = errors.New("key set unavailable")
)
