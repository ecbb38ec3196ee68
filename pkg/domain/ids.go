// Package domain holds the validated value types shared across the service.
//
// All identifiers are parsed at trust boundaries: a value of one of these
// types is guaranteed valid for the rest of its lifetime, so downstream code
// never re-validates.
package domain

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	dErrors "spapi/pkg/domain-errors"
)

var (
	organizationNumberPattern = regexp.MustCompile(`^\d{9}$`)
	personIdentifierPattern   = regexp.MustCompile(`^\d{11}$`)
	caseIDPattern             = regexp.MustCompile(`^[a-zæøåA-ZÆØÅ0-9\-_:.]{1,200}$`)
)

// OrganizationNumber identifies a Norwegian organization, nine digits.
type OrganizationNumber struct {
	value string
}

func ParseOrganizationNumber(s string) (OrganizationNumber, error) {
	if !organizationNumberPattern.MatchString(s) {
		return OrganizationNumber{}, dErrors.New(dErrors.CodeInvalidInput, "Ugyldig organisasjonsnummer")
	}
	return OrganizationNumber{value: s}, nil
}

func (o OrganizationNumber) String() string { return o.value }

// IsZero reports whether the value is the uninitialized zero value.
func (o OrganizationNumber) IsZero() bool { return o.value == "" }

// PersonIdentifier is a Norwegian national identity number, eleven digits.
// It must never appear in plaintext outside the audit record and the secure
// log channel; the slog representation below masks it so the application log
// cannot leak it by accident.
type PersonIdentifier struct {
	value string
}

func ParsePersonIdentifier(s string) (PersonIdentifier, error) {
	if !personIdentifierPattern.MatchString(s) {
		return PersonIdentifier{}, dErrors.New(dErrors.CodeInvalidInput, "Ugyldig personidentifikator")
	}
	return PersonIdentifier{value: s}, nil
}

func (p PersonIdentifier) String() string { return p.value }

// LogValue masks the identifier in structured logs.
func (p PersonIdentifier) LogValue() slog.Value {
	return slog.StringValue("***********")
}

// CaseID is the consumer's own case reference, echoed back in responses.
type CaseID struct {
	value string
}

func ParseCaseID(s string) (CaseID, error) {
	if !caseIDPattern.MatchString(s) {
		return CaseID{}, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("Ugyldig saksnummer %s", s))
	}
	return CaseID{value: s}, nil
}

func (c CaseID) String() string { return c.value }

// LegalBasis is the statutory/GDPR citation justifying a disclosure. The
// receiving audit system rejects texts longer than 100 characters once
// parentheses are escaped, so that limit is enforced at construction.
type LegalBasis struct {
	value string
}

func ParseLegalBasis(s string) (LegalBasis, error) {
	escaped := strings.NewReplacer("(", `\(`, ")", `\)`).Replace(s)
	if n := utf8.RuneCountInString(escaped); n > 100 {
		return LegalBasis{}, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("behandlingsgrunnlaget '%s' er for langt, er %d tegn", s, n))
	}
	return LegalBasis{value: s}, nil
}

func (l LegalBasis) String() string { return l.value }
