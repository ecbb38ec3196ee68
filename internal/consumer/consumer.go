// Package consumer holds the static catalogue of registered recipients and
// the per-consumer disclosure policies. The catalogue is built once at
// startup and never mutated.
package consumer

import (
	"spapi/pkg/domain"
)

// Consumer is one registered external recipient of disclosed data.
type Consumer struct {
	// Name is the display name, used in logs.
	Name string
	// OrganizationNumber uniquely identifies the consumer.
	OrganizationNumber domain.OrganizationNumber
	// ProcessingNumber is the behandlingsnummer forwarded to the identity
	// service so lookups are attributed to the right processing purpose.
	ProcessingNumber string
	// LegalBasis is this consumer's own statutory citation. Every audit
	// record carries it verbatim.
	LegalBasis domain.LegalBasis
	// Integrator, when set, is the only supplier allowed to call on this
	// consumer's behalf. A consumer with an integrator can never be
	// accessed directly.
	Integrator *domain.OrganizationNumber
	// CaseID decides whether requests must carry a saksId.
	CaseID CaseIDPolicy
}

func (c *Consumer) String() string { return c.Name }
