// Package authz resolves an authenticated token's claims to a registered
// consumer and enforces the integrator relationship. Signature, issuer,
// audience and scope are already verified by the authentication middleware;
// this package only interprets claims.
package authz

import (
	"context"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"spapi/internal/consumer"
	dErrors "spapi/pkg/domain-errors"
)

var (
	// ErrNoConsumerClaim: the token carries no resolvable consumer claim.
	ErrNoConsumerClaim = dErrors.New(dErrors.CodeForbidden, "klarte ikke utlede konsument fra token")
	// ErrUnknownConsumer: the consumer is not registered on this endpoint.
	ErrUnknownConsumer = dErrors.New(dErrors.CodeForbidden, "konsument er ikke registrert")
	// ErrMissingIntegrator: the consumer may only be reached through its
	// integrator, but the token has no supplier claim.
	ErrMissingIntegrator = dErrors.New(dErrors.CodeForbidden, "klarte ikke utlede integrator fra token")
	// ErrWrongIntegrator: the supplier in the token is not the consumer's
	// registered integrator.
	ErrWrongIntegrator = dErrors.New(dErrors.CodeForbidden, "feil integrator for konsument")
)

// Verifier maps verified claims to a Consumer from one endpoint's registry.
type Verifier struct {
	registry  *consumer.Registry
	secureLog *slog.Logger
}

func NewVerifier(registry *consumer.Registry, secureLog *slog.Logger) *Verifier {
	return &Verifier{registry: registry, secureLog: secureLog}
}

// Authorize resolves the calling consumer or fails with a forbidden error.
// Rejections are security-relevant and logged with the raw claim values to
// the secure channel; they never enter the legal audit trail.
func (v *Verifier) Authorize(ctx context.Context, claims jwt.MapClaims) (*consumer.Consumer, error) {
	org, ok := ConsumerOrgNumber(claims)
	if !ok {
		return nil, v.reject(ctx, claims, ErrNoConsumerClaim)
	}

	cons, ok := v.registry.Lookup(org)
	if !ok {
		return nil, v.reject(ctx, claims, ErrUnknownConsumer)
	}

	integrator, delegated := IntegratorOrgNumber(claims)
	if cons.Integrator == nil {
		// A consumer without a configured integrator can never be accessed
		// on behalf of anyone, even if the supplier is itself registered.
		if delegated {
			return nil, v.reject(ctx, claims, ErrWrongIntegrator)
		}
		return cons, nil
	}
	if !delegated {
		return nil, v.reject(ctx, claims, ErrMissingIntegrator)
	}
	if integrator.String() != cons.Integrator.String() {
		return nil, v.reject(ctx, claims, ErrWrongIntegrator)
	}
	return cons, nil
}

func (v *Verifier) reject(ctx context.Context, claims jwt.MapClaims, err error) error {
	v.secureLog.WarnContext(ctx, "avviste autorisering av konsument",
		"error", err,
		"consumer", claims[consumerClaim],
		"supplier", claims[supplierClaim],
	)
	return err
}
