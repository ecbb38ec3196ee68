// Package spokelse is the client for the payment-history service. It is a
// dumb transport: no retries, no own timeouts, no filtering — it inherits
// the request's deadline and hands periods to the projector untouched.
package spokelse

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"spapi/internal/platform/middleware"
	"spapi/internal/token"
	"spapi/pkg/domain"
	"spapi/pkg/requestcontext"
)

type Client struct {
	baseURL string
	scope   string
	http    *http.Client
	tokens  token.Source
}

func NewClient(baseURL, scope string, httpClient *http.Client, tokens token.Source) *Client {
	return &Client{baseURL: baseURL, scope: scope, http: httpClient, tokens: tokens}
}

type requestBody struct {
	Personidentifikatorer []string    `json:"personidentifikatorer"`
	Fom                   domain.Date `json:"fom"`
	Tom                   domain.Date `json:"tom"`
}

type wirePeriod struct {
	Fom                 domain.Date `json:"fom"`
	Tom                 domain.Date `json:"tom"`
	Organisasjonsnummer *string     `json:"organisasjonsnummer"`
	Grad                int         `json:"grad"`
	Tags                []string    `json:"tags"`
}

type responseBody struct {
	UtbetaltePerioder []wirePeriod `json:"utbetaltePerioder"`
}

func (c *Client) UtbetaltePerioder(ctx context.Context, personidentifikatorer []domain.PersonIdentifier, fom, tom domain.Date) ([]domain.PaymentPeriod, error) {
	accessToken, err := c.tokens.Get(ctx, c.scope)
	if err != nil {
		return nil, fmt.Errorf("access token for spøkelse: %w", err)
	}

	identifiers := make([]string, 0, len(personidentifikatorer))
	for _, id := range personidentifikatorer {
		identifiers = append(identifiers, id.String())
	}
	payload, err := json.Marshal(requestBody{Personidentifikatorer: identifiers, Fom: fom, Tom: tom})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/utbetalte-perioder", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.CallIDHeader, requestcontext.CallID(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spøkelse: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mottok HTTP %d fra spøkelse", resp.StatusCode)
	}

	var body responseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("spøkelse response: %w", err)
	}

	periods := make([]domain.PaymentPeriod, 0, len(body.UtbetaltePerioder))
	for _, p := range body.UtbetaltePerioder {
		period := domain.PaymentPeriod{Fom: p.Fom, Tom: p.Tom, Grad: p.Grad, Tags: p.Tags}
		if p.Organisasjonsnummer != nil {
			org, err := domain.ParseOrganizationNumber(*p.Organisasjonsnummer)
			if err != nil {
				return nil, fmt.Errorf("spøkelse response: %w", err)
			}
			period.OrganizationNumber = &org
		}
		periods = append(periods, period)
	}
	return periods, nil
}
