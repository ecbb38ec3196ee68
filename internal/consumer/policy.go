package consumer

import "time"

// CaseIDRequirement is the resolved requiredness of the saksId field for one
// request.
type CaseIDRequirement int

const (
	// CaseIDUnsupported: the field is ignored and never echoed back.
	CaseIDUnsupported CaseIDRequirement = iota
	// CaseIDOptional: validated and echoed when present.
	CaseIDOptional
	// CaseIDRequired: a missing field fails validation.
	CaseIDRequired
)

// CaseIDPolicy resolves saksId requiredness per environment and point in
// time. The same consumer can legitimately have a stricter rule in one
// environment, or transition from optional to required on a calendar date,
// so the rule is data on the Consumer rather than code at the call sites.
type CaseIDPolicy interface {
	Requirement(env string, now time.Time) CaseIDRequirement
}

type caseIDFixed CaseIDRequirement

func (p caseIDFixed) Requirement(string, time.Time) CaseIDRequirement {
	return CaseIDRequirement(p)
}

// CaseIDNever ignores the field entirely.
func CaseIDNever() CaseIDPolicy { return caseIDFixed(CaseIDUnsupported) }

// CaseIDAlways requires the field in every request.
func CaseIDAlways() CaseIDPolicy { return caseIDFixed(CaseIDRequired) }

type caseIDFromDate struct {
	cutoff time.Time
}

func (p caseIDFromDate) Requirement(_ string, now time.Time) CaseIDRequirement {
	if now.Before(p.cutoff) {
		return CaseIDOptional
	}
	return CaseIDRequired
}

// CaseIDRequiredFrom makes the field optional before the cutoff and required
// from it. The cutoff is evaluated against the service's local time zone,
// never against client-supplied time.
func CaseIDRequiredFrom(year int, month time.Month, day int, loc *time.Location) CaseIDPolicy {
	return caseIDFromDate{cutoff: time.Date(year, month, day, 0, 0, 0, 0, loc)}
}

type caseIDPerEnv struct {
	prod CaseIDPolicy
	dev  CaseIDPolicy
}

func (p caseIDPerEnv) Requirement(env string, now time.Time) CaseIDRequirement {
	if env == EnvProd {
		return p.prod.Requirement(env, now)
	}
	return p.dev.Requirement(env, now)
}

// CaseIDPerEnv selects a different rule per environment.
func CaseIDPerEnv(prod, dev CaseIDPolicy) CaseIDPolicy {
	return caseIDPerEnv{prod: prod, dev: dev}
}

// Environment names as derived from the cluster configuration.
const (
	EnvProd = "prod"
	EnvDev  = "dev"
)
