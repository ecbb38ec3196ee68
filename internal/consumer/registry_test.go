package consumer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spapi/pkg/domain"
)

func mustOrg(t *testing.T, s string) domain.OrganizationNumber {
	t.Helper()
	org, err := domain.ParseOrganizationNumber(s)
	require.NoError(t, err)
	return org
}

func TestRegistryLookup(t *testing.T) {
	afp := &Consumer{Name: "Fellesordningen for AFP", OrganizationNumber: mustOrg(t, "987414502")}
	registry, err := NewRegistry(afp)
	require.NoError(t, err)

	found, ok := registry.Lookup(mustOrg(t, "987414502"))
	require.True(t, ok)
	assert.Same(t, afp, found)

	_, ok = registry.Lookup(mustOrg(t, "999999999"))
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(
		&Consumer{Name: "a", OrganizationNumber: mustOrg(t, "987414502")},
		&Consumer{Name: "b", OrganizationNumber: mustOrg(t, "987414502")},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "987414502")
}

func TestCaseIDPolicies(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	beforeCutoff := time.Date(2025, time.January, 31, 23, 59, 59, 0, oslo)
	atCutoff := time.Date(2025, time.February, 1, 0, 0, 0, 0, oslo)

	assert.Equal(t, CaseIDUnsupported, CaseIDNever().Requirement(EnvProd, atCutoff))
	assert.Equal(t, CaseIDRequired, CaseIDAlways().Requirement(EnvDev, beforeCutoff))

	fromDate := CaseIDRequiredFrom(2025, time.February, 1, oslo)
	assert.Equal(t, CaseIDOptional, fromDate.Requirement(EnvProd, beforeCutoff))
	assert.Equal(t, CaseIDRequired, fromDate.Requirement(EnvProd, atCutoff))

	// The cutoff is local time: midnight UTC on the cutoff date is already
	// past it in Oslo.
	assert.Equal(t, CaseIDRequired, fromDate.Requirement(EnvProd, time.Date(2025, time.January, 31, 23, 30, 0, 0, time.UTC)))

	perEnv := CaseIDPerEnv(fromDate, CaseIDAlways())
	assert.Equal(t, CaseIDOptional, perEnv.Requirement(EnvProd, beforeCutoff))
	assert.Equal(t, CaseIDRequired, perEnv.Requirement(EnvDev, beforeCutoff))
}

func TestCatalogue(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	endpoints, err := Catalogue(oslo)
	require.NoError(t, err)
	require.Len(t, endpoints, 2)

	afp := endpoints[0]
	assert.Equal(t, "fellesordningen-for-afp", afp.ID)
	assert.Equal(t, "nav:sykepenger:fellesordningenforafp.read", afp.Scope)
	assert.Empty(t, afp.DelegatedScope)
	require.Len(t, afp.Registry.All(), 1)

	avtalefestet := endpoints[1]
	assert.Equal(t, "avtalefestet-pensjon", avtalefestet.ID)
	assert.Equal(t, "nav:sykepenger:avtalefestetpensjon.read", avtalefestet.Scope)
	assert.Equal(t, "nav:sykepenger/delegertavtalefestetpensjon.read", avtalefestet.DelegatedScope)
	assert.Len(t, avtalefestet.Registry.All(), 8)

	// A consumer on one endpoint must be unknown on the other.
	_, ok := avtalefestet.Registry.Lookup(mustOrg(t, "987414502"))
	assert.False(t, ok)

	// Delegated consumers carry their integrator, direct ones do not.
	drammen, ok := avtalefestet.Registry.Lookup(mustOrg(t, "980650383"))
	require.True(t, ok)
	require.NotNil(t, drammen.Integrator)
	assert.Equal(t, "927613298", drammen.Integrator.String())

	spk, ok := avtalefestet.Registry.Lookup(mustOrg(t, "982583462"))
	require.True(t, ok)
	assert.Nil(t, spk.Integrator)

	for _, c := range append(afp.Registry.All(), avtalefestet.Registry.All()...) {
		assert.Equal(t, "B709", c.ProcessingNumber, c.Name)
		assert.NotEmpty(t, c.LegalBasis.String(), c.Name)
	}
}
