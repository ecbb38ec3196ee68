package authz

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"spapi/pkg/domain"
)

// Maskinporten structures the consumer and supplier claims as
// {"ID": "<authority>:<orgnr>", ...}.
const (
	consumerClaim = "consumer"
	supplierClaim = "supplier"
)

func orgNumberFromClaim(claims jwt.MapClaims, name string) (domain.OrganizationNumber, bool) {
	obj, ok := claims[name].(map[string]any)
	if !ok {
		return domain.OrganizationNumber{}, false
	}
	id, ok := obj["ID"].(string)
	if !ok {
		return domain.OrganizationNumber{}, false
	}
	if i := strings.LastIndex(id, ":"); i >= 0 {
		id = id[i+1:]
	}
	org, err := domain.ParseOrganizationNumber(id)
	if err != nil {
		return domain.OrganizationNumber{}, false
	}
	return org, true
}

// ConsumerOrgNumber extracts the organization number of the consumer claim.
func ConsumerOrgNumber(claims jwt.MapClaims) (domain.OrganizationNumber, bool) {
	return orgNumberFromClaim(claims, consumerClaim)
}

// IntegratorOrgNumber extracts the organization number of the supplier
// claim. A token without a resolvable supplier claim is a direct call.
func IntegratorOrgNumber(claims jwt.MapClaims) (domain.OrganizationNumber, bool) {
	return orgNumberFromClaim(claims, supplierClaim)
}
