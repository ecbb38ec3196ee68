// Package disclosure filters payment periods against a validated request,
// projects them into the consumer-facing response shape and orchestrates
// the disclosure flow behind each endpoint.
package disclosure

import (
	json "github.com/goccy/go-json"

	"spapi/internal/request"
	"spapi/pkg/domain"
)

// exposedTags is the consumer-agnostic allow-list translating the internal
// tag vocabulary. Anything not listed here is dropped, never passed through.
var exposedTags = map[string]string{
	"UsikkerGrad": "UsikkerSykdomsgrad",
}

type projectedPeriod struct {
	FraOgMedDato domain.Date `json:"fraOgMedDato"`
	TilOgMedDato domain.Date `json:"tilOgMedDato"`
	Tags         []string    `json:"tags"`
	Sykdomsgrad  *int        `json:"sykdomsgrad,omitempty"`
}

type responseBody struct {
	SaksID            *string           `json:"saksId,omitempty"`
	UtbetaltePerioder []projectedPeriod `json:"utbetaltePerioder"`
}

// Project filters the periods and serializes the response body. The caller
// writes the returned bytes verbatim and audits exactly the same bytes.
//
// A period is disclosed when its payer matches the requested organization
// number and its grade reaches the requested minimum. The exact grade is
// echoed only when the request had no minimum: once a caller pre-filters by
// a threshold, the grade itself is unnecessary additional disclosure.
func Project(periods []domain.PaymentPeriod, req *request.DisclosureRequest) ([]byte, error) {
	minimum := 0
	if req.MinimumSykdomsgrad != nil {
		minimum = *req.MinimumSykdomsgrad
	}

	projected := make([]projectedPeriod, 0, len(periods))
	for _, p := range periods {
		if p.OrganizationNumber == nil || p.OrganizationNumber.String() != req.OrganizationNumber.String() {
			continue
		}
		if p.Grad < minimum {
			continue
		}
		out := projectedPeriod{
			FraOgMedDato: p.Fom,
			TilOgMedDato: p.Tom,
			Tags:         translateTags(p.Tags),
		}
		if req.MinimumSykdomsgrad == nil {
			grad := p.Grad
			out.Sykdomsgrad = &grad
		}
		projected = append(projected, out)
	}

	body := responseBody{UtbetaltePerioder: projected}
	if req.SaksID != nil {
		id := req.SaksID.String()
		body.SaksID = &id
	}
	return json.Marshal(body)
}

func translateTags(tags []string) []string {
	// Always an array on the wire, never null.
	translated := make([]string, 0, len(tags))
	for _, tag := range tags {
		if exposed, ok := exposedTags[tag]; ok {
			translated = append(translated, exposed)
		}
	}
	return translated
}
