package tokengate

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	testIssuer   = "http://fake-idp-issuer"
	testAudience = "http://fake-idp-aud/"
	testJwksURI  = "http://fake-idp-issuer/jwks/"
	testWkeURI   = "http://fake-idp-issuer/.well-known/openid-configuration"
	testKid      = "unittest"
	testSubject  = "0b13f81b-2c57-4921-b6b2-a913a9307707"
	testExponent = "AQAB"
)

func testRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func getModulus(key *rsa.PrivateKey) string {
	return base64.RawURLEncoding.EncodeToString(key.N.Bytes())
}

type claimOverride func(b *jwt.Builder)

// genToken mints an RS256 token for the fake IDP with sensible claims, each
// optionally overridden per test.
func genToken(t *testing.T, privateKey *rsa.PrivateKey, kid string, overrides ...claimOverride) string {
	t.Helper()
	b := jwt.NewBuilder().
		Issuer(testIssuer).
		Subject(testSubject).
		Audience([]string{testAudience}).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Claim("scope", "testscope")
	for _, o := range overrides {
		o(b)
	}
	tok, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	hdrs := jws.NewHeaders()
	if err := hdrs.Set(jws.KeyIDKey, kid); err != nil {
		t.Fatal(err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, privateKey, jws.WithProtectedHeaders(hdrs)))
	if err != nil {
		t.Fatal(err)
	}
	return string(signed)
}

// genSymmetricToken mints an HS256 token claiming the same kid as the RSA
// key set, for algorithm-confusion tests.
func genSymmetricToken(t *testing.T, kid string) string {
	t.Helper()
	tok, err := jwt.NewBuilder().
		Issuer(testIssuer).
		Subject(testSubject).
		Audience([]string{testAudience}).
		Expiration(time.Now().Add(time.Hour)).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	key, err := jwk.FromRaw([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	hdrs := jws.NewHeaders()
	if err := hdrs.Set(jws.KeyIDKey, kid); err != nil {
		t.Fatal(err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, key, jws.WithProtectedHeaders(hdrs)))
	if err != nil {
		t.Fatal(err)
	}
	return string(signed)
}

func jwksDocument(key *rsa.PrivateKey, kid string) Jwks {
	return Jwks{
		Keys: []JSONWebKeys{
			{
				Kty: "RSA",
				Kid: kid,
				Use: "sig",
				Alg: "RS256",
				N:   getModulus(key),
				E:   testExponent,
			},
		},
	}
}

// registerFakeIDP wires the discovery and JWKS endpoints onto the default
// http client through httpmock.
func registerFakeIDP(key *rsa.PrivateKey, kid string) {
	httpmock.RegisterResponder("GET", testWkeURI,
		httpmock.NewJsonResponderOrPanic(200, OpenIDConfig{JwksURI: testJwksURI}))
	httpmock.RegisterResponder("GET", testJwksURI,
		httpmock.NewJsonResponderOrPanic(200, jwksDocument(key, kid)))
}
