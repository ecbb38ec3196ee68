package middleware

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"spapi/internal/authz"
	"spapi/pkg/platform/httputil"
)

const (
	challengeUnauthorized = "Bearer token må settes i Authorization header for å hente data fra Spaπ!"
	challengeForbidden    = "Bearer token som er brukt har ikke rett tilgang til å hente data fra Spaπ! Ta kontakt med NAV."
)

type claimsKey struct{}

// Claims retrieves the verified token claims set by the authenticator.
func Claims(ctx context.Context) jwt.MapClaims {
	if claims, ok := ctx.Value(claimsKey{}).(jwt.MapClaims); ok {
		return claims
	}
	return jwt.MapClaims{}
}

// WithClaims injects claims into a context, for tests that bypass the
// middleware chain.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// Authenticator verifies bearer tokens for one endpoint: signature against
// the issuer's JWKS, issuer, audience and the scope claim. Which scope is
// expected depends on the token itself — a token carrying a resolvable
// supplier claim must use the endpoint's delegated scope.
//
// 401 is reserved for requests without a usable token at all; any token
// that parses into three segments but fails verification is 403.
type Authenticator struct {
	parser         *jwt.Parser
	keyfunc        jwt.Keyfunc
	directScope    string
	delegatedScope string
	secureLog      *slog.Logger
}

func NewAuthenticator(keyfunc jwt.Keyfunc, issuer, audience, directScope, delegatedScope string, secureLog *slog.Logger) *Authenticator {
	return &Authenticator{
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256"}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
		),
		keyfunc:        keyfunc,
		directScope:    directScope,
		delegatedScope: delegatedScope,
		secureLog:      secureLog,
	}
}

// Require wraps next with bearer authentication.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || len(strings.Split(raw, ".")) != 3 {
			httputil.WriteErrorMessage(w, r, http.StatusUnauthorized, challengeUnauthorized)
			return
		}

		claims := jwt.MapClaims{}
		token, err := a.parser.ParseWithClaims(raw, claims, a.keyfunc)
		if err != nil || !token.Valid {
			a.reject(w, r, raw, err)
			return
		}

		expected := a.directScope
		if _, delegated := authz.IntegratorOrgNumber(claims); delegated && a.delegatedScope != "" {
			expected = a.delegatedScope
		}
		if scope, _ := claims["scope"].(string); scope != expected {
			a.reject(w, r, raw, nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// reject logs the decoded token to the secure channel for incident
// investigation. Token contents never reach the caller.
func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, raw string, err error) {
	parts := strings.Split(raw, ".")
	header, _ := base64.RawURLEncoding.DecodeString(parts[0])
	payload, _ := base64.RawURLEncoding.DecodeString(parts[1])
	a.secureLog.ErrorContext(r.Context(), "mottok request med access token uten tilgang",
		"path", r.URL.Path,
		"error", err,
		"jwt_header", string(header),
		"jwt_payload", string(payload),
	)
	httputil.WriteErrorMessage(w, r, http.StatusForbidden, challengeForbidden)
}
