package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer         = "https://maskinporten.test"
	testAudience       = "https://spapi.test"
	testScope          = "nav:sykepenger:fellesordningenforafp.read"
	testDelegatedScope = "nav:sykepenger/delegertavtalefestetpensjon.read"
)

type authFixture struct {
	key  *rsa.PrivateKey
	auth *Authenticator

	served       bool
	servedClaims jwt.MapClaims
}

func newAuthFixture(t *testing.T, delegatedScope string) *authFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &authFixture{
		key: key,
		auth: NewAuthenticator(
			func(*jwt.Token) (any, error) { return &key.PublicKey, nil },
			testIssuer, testAudience, testScope, delegatedScope, discard,
		),
	}
}

func (f *authFixture) sign(t *testing.T, mutate func(jwt.MapClaims)) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":      testIssuer,
		"aud":      testAudience,
		"exp":      time.Now().Add(time.Minute).Unix(),
		"scope":    testScope,
		"consumer": map[string]any{"ID": "0192:987414502"},
	}
	if mutate != nil {
		mutate(claims)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func (f *authFixture) request(t *testing.T, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	f.served = false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.served = true
		f.servedClaims = Claims(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/fellesordningen-for-afp", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.auth.Require(next).ServeHTTP(rec, req)
	return rec
}

func TestRequireValidToken(t *testing.T) {
	f := newAuthFixture(t, "")

	rec := f.request(t, "Bearer "+f.sign(t, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, f.served)
	assert.Equal(t, testScope, f.servedClaims["scope"])
}

func TestRequireWithoutUsableToken(t *testing.T) {
	f := newAuthFixture(t, "")

	for _, authorization := range []string{"", "Basic abc", "Bearer ", "Bearer abc", "Bearer a.b"} {
		rec := f.request(t, authorization)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, authorization)
		assert.Contains(t, rec.Body.String(), "Bearer token må settes i Authorization header for å hente data fra Spaπ!")
		assert.False(t, f.served)
	}
}

func TestRequireRejectsBadTokens(t *testing.T) {
	f := newAuthFixture(t, "")

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": testIssuer, "aud": testAudience, "exp": time.Now().Add(time.Minute).Unix(), "scope": testScope,
	}).SignedString(otherKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage segments", "a.b.c"},
		{"wrong signing key", wrongKey},
		{"wrong issuer", f.sign(t, func(c jwt.MapClaims) { c["iss"] = "https://andre.test" })},
		{"wrong audience", f.sign(t, func(c jwt.MapClaims) { c["aud"] = "https://annen.test" })},
		{"expired", f.sign(t, func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Minute).Unix() })},
		{"missing expiry", f.sign(t, func(c jwt.MapClaims) { delete(c, "exp") })},
		{"wrong scope", f.sign(t, func(c jwt.MapClaims) { c["scope"] = "nav:annet.read" })},
		{"missing scope", f.sign(t, func(c jwt.MapClaims) { delete(c, "scope") })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.request(t, "Bearer "+tt.token)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Contains(t, rec.Body.String(), "Bearer token som er brukt har ikke rett tilgang til å hente data fra Spaπ! Ta kontakt med NAV.")
			assert.False(t, f.served)
		})
	}
}

func TestRequireRejectsUnsignedToken(t *testing.T) {
	f := newAuthFixture(t, "")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"iss": testIssuer, "aud": testAudience, "exp": time.Now().Add(time.Minute).Unix(), "scope": testScope,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	rec := f.request(t, "Bearer "+unsigned)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireDelegatedScope(t *testing.T) {
	f := newAuthFixture(t, testDelegatedScope)

	withSupplier := func(scope string) string {
		return f.sign(t, func(c jwt.MapClaims) {
			c["scope"] = scope
			c["supplier"] = map[string]any{"ID": "0192:927613298"}
		})
	}

	// A token with a supplier claim must use the delegated scope.
	rec := f.request(t, "Bearer "+withSupplier(testDelegatedScope))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, "Bearer "+withSupplier(testScope))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A direct token must not use the delegated scope.
	rec = f.request(t, "Bearer "+f.sign(t, func(c jwt.MapClaims) { c["scope"] = testDelegatedScope }))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Without a configured delegated scope a supplier token is held to the
	// direct scope.
	direct := newAuthFixture(t, "")
	rec = direct.request(t, "Bearer "+direct.sign(t, func(c jwt.MapClaims) {
		c["supplier"] = map[string]any{"ID": "0192:927613298"}
	}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCallIDMiddleware(t *testing.T) {
	var echoed string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		echoed = w.Header().Get(CallIDHeader)
	})

	req := httptest.NewRequest(http.MethodGet, "/velkommen", nil)
	req.Header.Set(CallIDHeader, "11111111-2222-3333-4444-555555555555")
	rec := httptest.NewRecorder()
	CallID(next).ServeHTTP(rec, req)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", echoed)

	// Non-UUID inbound ids are replaced.
	req = httptest.NewRequest(http.MethodGet, "/velkommen", nil)
	req.Header.Set(CallIDHeader, "ikke-en-uuid")
	rec = httptest.NewRecorder()
	CallID(next).ServeHTTP(rec, req)
	assert.NotEmpty(t, echoed)
	assert.NotEqual(t, "ikke-en-uuid", echoed)
}
