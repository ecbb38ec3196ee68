package consumer

import (
	"fmt"
	"time"

	"spapi/pkg/domain"
)

// Endpoint groups the consumers served by one authenticated route. Every
// endpoint has a direct scope; a delegated scope exists only when at least
// one of its consumers is reached through an integrator.
type Endpoint struct {
	// ID is the path segment of the endpoint, e.g. "fellesordningen-for-afp".
	ID string
	// Name is the human-readable API name.
	Name string
	// Scope is the direct Maskinporten scope.
	Scope string
	// DelegatedScope is the scope integrators use on behalf of a consumer.
	// Empty when no consumer on this endpoint has an integrator.
	DelegatedScope string
	// Registry resolves this endpoint's consumers. A consumer registered on
	// another endpoint is unknown here, so a token minted for one API can
	// never address another.
	Registry *Registry
}

const afpLegalBasis = "GDPR Art. 6(1)e. AFP-tilskottsloven §17 første ledd, §29 andre ledd. GDPR Art. 9(2)b"

// Behandlingsnummer for sick-pay disclosures to pension schemes.
const afpProcessingNumber = "B709"

// Catalogue builds every endpoint and its consumers from the fixed in-code
// configuration. It validates that no organization number is registered
// twice across the whole catalogue, and must abort startup on error.
func Catalogue(caseIDCutoffLoc *time.Location) ([]Endpoint, error) {
	legalBasis, err := domain.ParseLegalBasis(afpLegalBasis)
	if err != nil {
		return nil, err
	}

	aksio, err := domain.ParseOrganizationNumber("927613298")
	if err != nil {
		return nil, err
	}

	// saksId rollout for avtalefestet pensjon: required in dev since the
	// start, required in prod from 2025-02-01 (local time). Consumers
	// calling through an integrator have always been required to send it.
	directCaseID := CaseIDPerEnv(
		CaseIDRequiredFrom(2025, time.February, 1, caseIDCutoffLoc),
		CaseIDAlways(),
	)

	fellesordningen, err := newConsumers(legalBasis, nil, CaseIDNever(),
		entry{"Fellesordningen for AFP", "987414502"},
	)
	if err != nil {
		return nil, err
	}

	direct, err := newConsumers(legalBasis, nil, directCaseID,
		entry{"Statens pensjonskasse", "982583462"},
		entry{"Kommunal landspensjonskasse", "938708606"},
		entry{"Oslo pensjonsforsikring", "982759412"},
		entry{"Storebrand pensjonstjenester", "931936492"},
		entry{"Storebrand livsforsikring", "958995369"},
		entry{"Gabler pensjonstjenester", "916833520"},
	)
	if err != nil {
		return nil, err
	}

	delegated, err := newConsumers(legalBasis, &aksio, CaseIDAlways(),
		entry{"Drammen kommune", "980650383"},
		entry{"Arendal kommune", "940380014"},
	)
	if err != nil {
		return nil, err
	}

	fellesordningenRegistry, err := NewRegistry(fellesordningen...)
	if err != nil {
		return nil, err
	}
	avtalefestetRegistry, err := NewRegistry(append(direct, delegated...)...)
	if err != nil {
		return nil, err
	}

	endpoints := []Endpoint{
		{
			ID:       "fellesordningen-for-afp",
			Name:     "Fellesordningen for AFP",
			Scope:    "nav:sykepenger:fellesordningenforafp.read",
			Registry: fellesordningenRegistry,
		},
		{
			ID:             "avtalefestet-pensjon",
			Name:           "Avtalefestet pensjon",
			Scope:          "nav:sykepenger:avtalefestetpensjon.read",
			DelegatedScope: "nav:sykepenger/delegertavtalefestetpensjon.read",
			Registry:       avtalefestetRegistry,
		},
	}

	if err := validateUnique(endpoints); err != nil {
		return nil, err
	}
	return endpoints, nil
}

type entry struct {
	name  string
	orgnr string
}

func newConsumers(legalBasis domain.LegalBasis, integrator *domain.OrganizationNumber, caseID CaseIDPolicy, entries ...entry) ([]*Consumer, error) {
	consumers := make([]*Consumer, 0, len(entries))
	for _, e := range entries {
		org, err := domain.ParseOrganizationNumber(e.orgnr)
		if err != nil {
			return nil, fmt.Errorf("consumer %s: %w", e.name, err)
		}
		consumers = append(consumers, &Consumer{
			Name:               e.name,
			OrganizationNumber: org,
			ProcessingNumber:   afpProcessingNumber,
			LegalBasis:         legalBasis,
			Integrator:         integrator,
			CaseID:             caseID,
		})
	}
	return consumers, nil
}

func validateUnique(endpoints []Endpoint) error {
	seen := make(map[string]string)
	for _, ep := range endpoints {
		for _, c := range ep.Registry.All() {
			key := c.OrganizationNumber.String()
			if other, exists := seen[key]; exists {
				return fmt.Errorf("organization number %s registered for both %s and %s", key, other, c.Name)
			}
			seen[key] = c.Name
		}
	}
	return nil
}
