package domain

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "spapi/pkg/domain-errors"
)

func TestParseOrganizationNumber(t *testing.T) {
	org, err := ParseOrganizationNumber("987414502")
	require.NoError(t, err)
	assert.Equal(t, "987414502", org.String())
	assert.False(t, org.IsZero())

	for _, invalid := range []string{"", "12345678", "1234567890", "98741450a", "98741450 "} {
		_, err := ParseOrganizationNumber(invalid)
		require.Error(t, err, invalid)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	}
}

func TestParsePersonIdentifier(t *testing.T) {
	person, err := ParsePersonIdentifier("12345678901")
	require.NoError(t, err)
	assert.Equal(t, "12345678901", person.String())

	for _, invalid := range []string{"", "1234567890", "123456789012", "1234567890a"} {
		_, err := ParsePersonIdentifier(invalid)
		require.Error(t, err, invalid)
	}
}

func TestPersonIdentifierMaskedInLogs(t *testing.T) {
	person, err := ParsePersonIdentifier("12345678901")
	require.NoError(t, err)

	var buf strings.Builder
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("lookup", "person", person)

	assert.NotContains(t, buf.String(), "12345678901")
	assert.Contains(t, buf.String(), "***********")
}

func TestParseCaseID(t *testing.T) {
	for _, valid := range []string{"1", "sak-42", "SAK_2024:æøå.v2", strings.Repeat("a", 200)} {
		id, err := ParseCaseID(valid)
		require.NoError(t, err, valid)
		assert.Equal(t, valid, id.String())
	}

	for _, invalid := range []string{"", "sak 42", "sak/42", strings.Repeat("a", 201)} {
		_, err := ParseCaseID(invalid)
		require.Error(t, err, invalid)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	}
}

func TestParseLegalBasis(t *testing.T) {
	basis, err := ParseLegalBasis("GDPR Art. 6(1)e. AFP-tilskottsloven §17 første ledd, §29 andre ledd. GDPR Art. 9(2)b")
	require.NoError(t, err)
	assert.Contains(t, basis.String(), "AFP-tilskottsloven")

	// Escaping parentheses counts toward the limit: 98 characters with two
	// parentheses escape to exactly 100 and pass, one more character does not.
	padded := strings.Repeat("x", 94) + "(ab)"
	_, err = ParseLegalBasis(padded)
	require.NoError(t, err)

	_, err = ParseLegalBasis(padded + "x")
	require.Error(t, err)
}
