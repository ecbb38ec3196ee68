package disclosure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"spapi/internal/consumer"
	"spapi/internal/platform/metrics"
	"spapi/internal/platform/middleware"
	"spapi/internal/request"
	"spapi/pkg/domain"
	dErrors "spapi/pkg/domain-errors"
	"spapi/pkg/platform/httputil"
	"spapi/pkg/requestcontext"
)

// Identities resolves the full set of historical person identifiers that
// must all be queried against payment history.
type Identities interface {
	HentAlle(ctx context.Context, person domain.PersonIdentifier, cons *consumer.Consumer) ([]domain.PersonIdentifier, error)
}

// PaymentHistory fetches payment periods for a set of identifiers.
type PaymentHistory interface {
	UtbetaltePerioder(ctx context.Context, personidentifikatorer []domain.PersonIdentifier, fom, tom domain.Date) ([]domain.PaymentPeriod, error)
}

// AuditTrail durably records one disclosure. The write must be acknowledged
// before the response is sent; an error fails the whole request.
type AuditTrail interface {
	Logg(ctx context.Context, person domain.PersonIdentifier, cons *consumer.Consumer, leverteData []byte) error
}

// Authorizer resolves verified claims to a consumer.
type Authorizer interface {
	Authorize(ctx context.Context, claims jwt.MapClaims) (*consumer.Consumer, error)
}

// Handler serves one endpoint's disclosure route.
type Handler struct {
	endpoint   consumer.Endpoint
	authorizer Authorizer
	resolver   *request.Resolver
	identities Identities
	history    PaymentHistory
	audit      AuditTrail
	metrics    *metrics.Metrics
	logger     *slog.Logger
	secureLog  *slog.Logger
}

func NewHandler(
	endpoint consumer.Endpoint,
	authorizer Authorizer,
	resolver *request.Resolver,
	identities Identities,
	history PaymentHistory,
	audit AuditTrail,
	m *metrics.Metrics,
	logger *slog.Logger,
	secureLog *slog.Logger,
) *Handler {
	return &Handler{
		endpoint:   endpoint,
		authorizer: authorizer,
		resolver:   resolver,
		identities: identities,
		history:    history,
		audit:      audit,
		metrics:    m,
		logger:     logger,
		secureLog:  secureLog,
	}
}

// Register mounts the versioned and unversioned POST routes on the router.
// Authentication middleware is applied by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/"+h.endpoint.ID, h.serve)
	r.Post("/"+h.endpoint.ID+"/{versjon}", h.serve)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cons, err := h.authorizer.Authorize(ctx, middleware.Claims(ctx))
	if err != nil {
		if h.metrics != nil {
			h.metrics.AuthorizationRejected.Inc()
		}
		h.writeError(w, r, err)
		return
	}

	version, err := versionFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, r, dErrors.Wrap(dErrors.CodeInternal, "klarte ikke lese request body", err))
		return
	}
	h.secureLog.InfoContext(ctx, "mottok request",
		"konsument", cons.Name,
		"versjon", version,
		"request_body", string(body),
	)

	req, err := h.resolver.Resolve(body, version, cons, requestcontext.Now(ctx))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	identifiers, err := h.identities.HentAlle(ctx, req.PersonIdentifier, cons)
	if err != nil {
		h.writeError(w, r, dErrors.Wrap(dErrors.CodeInternal, "klarte ikke hente personidentifikatorer", err))
		return
	}

	periods, err := h.history.UtbetaltePerioder(ctx, identifiers, req.Fom, req.Tom)
	if err != nil {
		h.writeError(w, r, dErrors.Wrap(dErrors.CodeInternal, "klarte ikke hente utbetalte perioder", err))
		return
	}

	payload, err := Project(periods, req)
	if err != nil {
		h.writeError(w, r, dErrors.Wrap(dErrors.CodeInternal, "klarte ikke bygge response", err))
		return
	}

	// The audit write is acknowledged before any byte of the response
	// leaves the process. Losing an audit record is worse than failing
	// the request.
	if err := h.audit.Logg(ctx, req.PersonIdentifier, cons, payload); err != nil {
		if h.metrics != nil {
			h.metrics.AuditWriteFailures.Inc()
		}
		h.writeError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.Disclosures.WithLabelValues(cons.Name).Inc()
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := dErrors.ToHTTPStatus(dErrors.CodeOf(err))
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "feil ved håndtering av request",
			"endpoint", h.endpoint.ID,
			"error", err,
			"feilreferanse", requestcontext.CallID(r.Context()),
		)
	} else {
		h.logger.WarnContext(r.Context(), "avviste request",
			"endpoint", h.endpoint.ID,
			"status", status,
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, r, err)
}

func versionFromPath(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "versjon")
	if raw == "" {
		return 1, nil
	}
	trimmed := strings.TrimPrefix(strings.ToLower(raw), "v")
	version, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeNotFound,
			fmt.Sprintf("Det finnes ingen versjon '%s' av dette API-et.", raw))
	}
	return version, nil
}
