package tokengate

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// verifySignature matches the token's kid against the key set and checks the
// signature over the signing input. The header algorithm must be on the
// allow list and must be an RSA method matching the key's material; a token
// claiming HS256 against an RSA key set is rejected before any crypto runs.
func verifySignature(decoded *DecodedToken, keySet *KeySet, allowedAlgs []string) error {
	key := keySet.Key(decoded.Header.Kid)
	if key == nil {
		return fmt.Errorf("%w: kid %q", ErrUnknownKey, decoded.Header.Kid)
	}
	alg := decoded.Header.Alg
	if !algAllowed(alg, allowedAlgs) {
		return fmt.Errorf("%w: %s not allowed", ErrAlgorithmMismatch, alg)
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodRSA)
	if !ok {
		return fmt.Errorf("%w: %s is not an RSA method", ErrAlgorithmMismatch, alg)
	}
	if key.Kty != "" && key.Kty != "RSA" {
		return fmt.Errorf("%w: key %q has type %s", ErrAlgorithmMismatch, key.Kid, key.Kty)
	}
	if key.Alg != "" && key.Alg != alg {
		return fmt.Errorf("%w: key %q expects %s", ErrAlgorithmMismatch, key.Kid, key.Alg)
	}
	pub, err := key.rsaPublicKey()
	if err != nil {
		return fmt.Errorf("%w: kid %q: %v", ErrUnknownKey, key.Kid, err)
	}
	if err := method.Verify(decoded.SigningInput, decoded.Signature, pub); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

func algAllowed(alg string, allowed []string) bool {
	for _, a := range allowed {
		if a == alg {
			return true
		}
	}
	return false
}
