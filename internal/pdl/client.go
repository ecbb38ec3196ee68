// Package pdl resolves the full set of historical person identifiers for a
// person, so payment history is queried under every alias.
package pdl

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"spapi/internal/consumer"
	"spapi/internal/token"
	"spapi/pkg/domain"
	"spapi/pkg/requestcontext"
)

const query = "query($ident: ID!) { hentIdenter(ident: $ident, historikk: true, grupper: [FOLKEREGISTERIDENT]) { identer { ident } } }"

type Client struct {
	url    string
	scope  string
	http   *http.Client
	tokens token.Source
}

func NewClient(baseURL, scope string, httpClient *http.Client, tokens token.Source) *Client {
	return &Client{url: baseURL + "/graphql", scope: scope, http: httpClient, tokens: tokens}
}

type graphqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		HentIdenter struct {
			Identer []struct {
				Ident string `json:"ident"`
			} `json:"identer"`
		} `json:"hentIdenter"`
	} `json:"data"`
}

// HentAlle returns every known identifier for the person, always including
// the queried one. The consumer's processing number attributes the lookup
// to the right purpose.
func (c *Client) HentAlle(ctx context.Context, person domain.PersonIdentifier, cons *consumer.Consumer) ([]domain.PersonIdentifier, error) {
	accessToken, err := c.tokens.Get(ctx, c.scope)
	if err != nil {
		return nil, fmt.Errorf("access token for pdl: %w", err)
	}

	payload, err := json.Marshal(graphqlRequest{
		Query:     query,
		Variables: map[string]string{"ident": person.String()},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("behandlingsnummer", cons.ProcessingNumber)
	req.Header.Set("Nav-Call-Id", requestcontext.CallID(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pdl: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mottok HTTP %d fra pdl", resp.StatusCode)
	}

	var body graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("pdl response: %w", err)
	}

	seen := map[string]bool{person.String(): true}
	identifiers := []domain.PersonIdentifier{person}
	for _, ident := range body.Data.HentIdenter.Identer {
		if seen[ident.Ident] {
			continue
		}
		id, err := domain.ParsePersonIdentifier(ident.Ident)
		if err != nil {
			return nil, fmt.Errorf("pdl response: %w", err)
		}
		seen[ident.Ident] = true
		identifiers = append(identifiers, id)
	}
	return identifiers, nil
}
