package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	Disclosures           *prometheus.CounterVec
	AuthorizationRejected prometheus.Counter
	AuditWriteFailures    prometheus.Counter
	TokenRefreshes        prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		Disclosures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "spapi_disclosures_total",
			Help: "Disclosures served, by consumer",
		}, []string{"konsument"}),
		AuthorizationRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "spapi_authorization_rejected_total",
			Help: "Authenticated requests rejected by the authorization verifier",
		}),
		AuditWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "spapi_audit_write_failures_total",
			Help: "Disclosures failed because the audit write was not acknowledged",
		}),
		TokenRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "spapi_token_refreshes_total",
			Help: "Outbound access tokens fetched from the identity provider",
		}),
	}
}
