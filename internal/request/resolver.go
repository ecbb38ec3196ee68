// Package request turns raw request bodies into validated disclosure
// requests. Which fields are required is policy, keyed by consumer,
// version, environment and the current date.
package request

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"spapi/internal/consumer"
	"spapi/pkg/domain"
	dErrors "spapi/pkg/domain-errors"
)

// DisclosureRequest is a fully validated request for payment-period data.
type DisclosureRequest struct {
	PersonIdentifier   domain.PersonIdentifier
	OrganizationNumber domain.OrganizationNumber
	Fom                domain.Date
	Tom                domain.Date
	MinimumSykdomsgrad *int
	SaksID             *domain.CaseID
}

// Resolver validates request bodies against the owning consumer's policy.
// It is stateless and safe for concurrent use.
type Resolver struct {
	env string
}

func NewResolver(env string) *Resolver {
	return &Resolver{env: env}
}

// Resolve validates the body for the given consumer and version. The
// current time decides date-gated field policies and must be server time,
// never client-supplied.
func (r *Resolver) Resolve(body []byte, version int, cons *consumer.Consumer, now time.Time) (*DisclosureRequest, error) {
	if version != 1 {
		return nil, dErrors.New(dErrors.CodeNotFound,
			fmt.Sprintf("Det finnes ingen versjon 'v%d' av dette API-et.", version))
	}

	fields := decodeFields(body)

	person, err := requiredField(fields, "personidentifikator", parseString(domain.ParsePersonIdentifier))
	if err != nil {
		return nil, err
	}
	org, err := requiredField(fields, "organisasjonsnummer", parseString(domain.ParseOrganizationNumber))
	if err != nil {
		return nil, err
	}
	fom, err := requiredField(fields, "fraOgMedDato", parseString(domain.ParseDate))
	if err != nil {
		return nil, err
	}
	tom, err := requiredField(fields, "tilOgMedDato", parseString(func(s string) (domain.Date, error) {
		tom, err := domain.ParseDate(s)
		if err != nil {
			return domain.Date{}, err
		}
		if tom.Before(fom) {
			return domain.Date{}, fmt.Errorf("ugyldig periode %s til %s", fom, tom)
		}
		return tom, nil
	}))
	if err != nil {
		return nil, err
	}

	minimumSykdomsgrad, err := optionalField(fields, "minimumSykdomsgrad", parseGrade)
	if err != nil {
		return nil, err
	}

	saksID, err := r.resolveCaseID(fields, cons, now)
	if err != nil {
		return nil, err
	}

	return &DisclosureRequest{
		PersonIdentifier:   person,
		OrganizationNumber: org,
		Fom:                fom,
		Tom:                tom,
		MinimumSykdomsgrad: minimumSykdomsgrad,
		SaksID:             saksID,
	}, nil
}

func (r *Resolver) resolveCaseID(fields map[string]json.RawMessage, cons *consumer.Consumer, now time.Time) (*domain.CaseID, error) {
	switch cons.CaseID.Requirement(r.env, now) {
	case CaseIDUnsupported:
		return nil, nil
	case CaseIDRequired:
		id, err := requiredField(fields, "saksId", parseString(domain.ParseCaseID))
		if err != nil {
			return nil, err
		}
		return &id, nil
	default:
		return optionalField(fields, "saksId", parseString(domain.ParseCaseID))
	}
}

// Requirement aliases, so call sites read without the consumer prefix.
const (
	CaseIDUnsupported = consumer.CaseIDUnsupported
	CaseIDRequired    = consumer.CaseIDRequired
)

func decodeFields(body []byte) map[string]json.RawMessage {
	fields := make(map[string]json.RawMessage)
	// An unparsable body is treated as an empty one, so the caller gets a
	// missing-field message instead of a JSON parser internals dump.
	if err := json.Unmarshal(body, &fields); err != nil {
		return map[string]json.RawMessage{}
	}
	return fields
}

func missingField(path string) error {
	return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("Mangler feltet '%s' i request body.", path))
}

func invalidField(path string, raw json.RawMessage) error {
	return dErrors.New(dErrors.CodeInvalidInput,
		fmt.Sprintf("Ugyldig verdi i feltet '%s' i request body. (var %s)", path, rawText(raw)))
}

// rawText renders the raw value the way it was sent, without quotes around
// strings, for use in validation messages.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func requiredField[T any](fields map[string]json.RawMessage, path string, parse func(json.RawMessage) (T, error)) (T, error) {
	raw, ok := fields[path]
	if !ok || string(raw) == "null" {
		var zero T
		return zero, missingField(path)
	}
	value, err := parse(raw)
	if err != nil {
		var zero T
		return zero, invalidField(path, raw)
	}
	return value, nil
}

func optionalField[T any](fields map[string]json.RawMessage, path string, parse func(json.RawMessage) (T, error)) (*T, error) {
	raw, ok := fields[path]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	value, err := parse(raw)
	if err != nil {
		return nil, invalidField(path, raw)
	}
	return &value, nil
}

func parseString[T any](parse func(string) (T, error)) func(json.RawMessage) (T, error) {
	return func(raw json.RawMessage) (T, error) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			var zero T
			return zero, err
		}
		return parse(s)
	}
}

func parseGrade(raw json.RawMessage) (int, error) {
	var grade int
	if err := json.Unmarshal(raw, &grade); err != nil {
		return 0, err
	}
	if grade < 1 || grade > 100 {
		return 0, fmt.Errorf("må være mellom 1 og 100, var %d", grade)
	}
	return grade, nil
}
