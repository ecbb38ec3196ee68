package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/joho/godotenv"

	"spapi/internal/audit"
	"spapi/internal/consumer"
	spapihttp "spapi/internal/http"
	"spapi/internal/pdl"
	"spapi/internal/platform/config"
	"spapi/internal/platform/httpserver"
	"spapi/internal/platform/logger"
	"spapi/internal/platform/metrics"
	"spapi/internal/spokelse"
	"spapi/internal/token"
)

// main wires dependencies and owns the server lifecycle. All business logic
// lives in internal packages.
func main() {
	_ = godotenv.Load()

	log := logger.New()
	secureLog := logger.NewSecure()

	cfg, err := config.FromEnv()
	if err != nil {
		fatal(log, "config", err)
	}

	oslo, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		fatal(log, "timezone", err)
	}

	endpoints, err := consumer.Catalogue(oslo)
	if err != nil {
		fatal(log, "consumer catalogue", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.Maskinporten.JWKSURI})
	if err != nil {
		fatal(log, "jwks", err)
	}

	m := metrics.New()

	httpClient := &http.Client{Timeout: 10 * time.Second}
	tokens := token.NewCache(
		token.NewAzureFetcher(cfg.Azure.TokenEndpoint, cfg.Azure.ClientID, cfg.Azure.ClientSecret, httpClient),
		token.WithFetchCallback(m.TokenRefreshes.Inc),
	)

	identities := pdl.NewClient(cfg.PDL.BaseURL, cfg.PDL.Scope, httpClient, tokens)
	history := spokelse.NewClient(cfg.Spokelse.BaseURL, cfg.Spokelse.Scope, httpClient, tokens)

	sender, err := audit.NewKafkaSender(ctx, cfg.Kafka, log)
	if err != nil {
		fatal(log, "kafka", err)
	}
	defer sender.Close()
	trail := audit.NewTrail(sender, secureLog)

	router := spapihttp.NewRouter(spapihttp.Deps{
		Config:     cfg,
		Endpoints:  endpoints,
		Keyfunc:    jwks.Keyfunc,
		Identities: identities,
		History:    history,
		Audit:      trail,
		Metrics:    m,
		Logger:     log,
		SecureLog:  secureLog,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starter spapi", "addr", cfg.Addr, "env", cfg.Env)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fatal(log, "graceful shutdown", err)
	}
}

func fatal(log *slog.Logger, what string, err error) {
	log.Error(what, "error", err)
	os.Exit(1)
}
