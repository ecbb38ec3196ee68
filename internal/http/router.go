// Package http assembles the service router: public plumbing routes, the
// platform probes and one authenticated group per disclosure endpoint.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spapi/internal/authz"
	"spapi/internal/consumer"
	"spapi/internal/disclosure"
	"spapi/internal/platform/config"
	"spapi/internal/platform/metrics"
	"spapi/internal/platform/middleware"
	"spapi/internal/request"
)

// Deps carries everything the router needs wired up by main.
type Deps struct {
	Config     config.Config
	Endpoints  []consumer.Endpoint
	Keyfunc    jwt.Keyfunc
	Identities disclosure.Identities
	History    disclosure.PaymentHistory
	Audit      disclosure.AuditTrail
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	SecureLog  *slog.Logger
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CallID)
	r.Use(httprate.LimitByIP(50, time.Minute))

	r.Get("/velkommen", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Velkommen til Spaπ! 👽"))
	})
	r.Get("/internal/isalive", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ISALIVE"))
	})
	r.Get("/internal/isready", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("READY"))
	})
	r.Method(http.MethodGet, "/internal/metrics", promhttp.Handler())

	// Each endpoint gets its own authenticator and verifier so a token for
	// one API can never address another.
	for _, endpoint := range deps.Endpoints {
		authenticator := middleware.NewAuthenticator(
			deps.Keyfunc,
			deps.Config.Maskinporten.Issuer,
			deps.Config.Maskinporten.Audience,
			endpoint.Scope,
			endpoint.DelegatedScope,
			deps.SecureLog,
		)
		handler := disclosure.NewHandler(
			endpoint,
			authz.NewVerifier(endpoint.Registry, deps.SecureLog),
			request.NewResolver(deps.Config.Env),
			deps.Identities,
			deps.History,
			deps.Audit,
			deps.Metrics,
			deps.Logger,
			deps.SecureLog,
		)
		r.Group(func(g chi.Router) {
			g.Use(authenticator.Require)
			handler.Register(g)
		})
	}

	return r
}
