package routermiddlewares

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	tokengate "github.com/trailhead-labs/go-token-gate"
)

const (
	exponent = "AQAB"
	audience = "http://fake-idp-aud/"
	kid      = "unittest"
)

func genToken(t *testing.T, privateKey *rsa.PrivateKey, iss string, expired bool) string {
	t.Helper()
	b := jwt.NewBuilder().
		Issuer(iss).
		Subject("0b13f81b-2c57-4921-b6b2-a913a9307707").
		Audience([]string{audience}).
		IssuedAt(time.Now()).
		Claim("scope", "testscope")
	if expired {
		b = b.Expiration(time.Now().Add(-10 * time.Minute))
	} else {
		b = b.Expiration(time.Now().Add(time.Hour))
	}
	tok, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	hdrs := jws.NewHeaders()
	if err := hdrs.Set(jws.KeyIDKey, kid); err != nil {
		t.Fatal(err)
	}
	token, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, privateKey, jws.WithProtectedHeaders(hdrs)))
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + string(token)
}

func getModulus(key *rsa.PrivateKey) string {
	return base64.RawURLEncoding.EncodeToString(key.N.Bytes())
}

type mockReq struct {
	URI  string
	Body interface{}
}

func newMockServer(reqs ...*mockReq) *httptest.Server {
	handler := http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			for _, proc := range reqs {
				if proc.URI == r.URL.RequestURI() && r.Method == "GET" {
					w.WriteHeader(http.StatusOK)
					bytes, _ := json.Marshal(proc.Body)
					_, _ = w.Write(bytes)
					return
				}
			}

			w.WriteHeader(http.StatusNotFound)
		})

	return httptest.NewServer(handler)
}

// newMockIDP spins up a fake issuer serving discovery and the JWKS for key,
// plus a gate configured against it.
func newMockIDP(t *testing.T, key *rsa.PrivateKey) (*httptest.Server, *tokengate.TokenGate) {
	t.Helper()
	wkeReq := &mockReq{URI: "/.well-known/openid-configuration"}
	jwksReq := &mockReq{URI: "/jwks"}

	mockServer := newMockServer(wkeReq, jwksReq)
	t.Cleanup(mockServer.Close)

	wkeReq.Body = tokengate.OpenIDConfig{JwksURI: mockServer.URL + "/jwks"}
	jwksReq.Body = tokengate.Jwks{Keys: []tokengate.JSONWebKeys{{
		Kty: "RSA",
		Kid: kid,
		Use: "sig",
		Alg: "RS256",
		N:   getModulus(key),
		E:   exponent,
	}}}

	gate, err := tokengate.New(tokengate.Options{
		Issuer:   mockServer.URL,
		Audience: audience,
	})
	if err != nil {
		t.Fatal(err)
	}
	return mockServer, gate
}
