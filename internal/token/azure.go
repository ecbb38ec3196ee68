package token

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// AzureFetcher obtains tokens with the client credentials grant.
type AzureFetcher struct {
	tokenEndpoint string
	clientID      string
	clientSecret  string
	http          *http.Client
}

func NewAzureFetcher(tokenEndpoint, clientID, clientSecret string, httpClient *http.Client) *AzureFetcher {
	return &AzureFetcher{
		tokenEndpoint: tokenEndpoint,
		clientID:      clientID,
		clientSecret:  clientSecret,
		http:          httpClient,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (f *AzureFetcher) Fetch(ctx context.Context, scope string) (string, time.Duration, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {f.clientID},
		"client_secret": {f.clientSecret},
		"scope":         {scope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.http.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("mottok HTTP %d fra token-endepunktet", resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", 0, fmt.Errorf("token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", 0, fmt.Errorf("token response mangler access_token")
	}
	return body.AccessToken, time.Duration(body.ExpiresIn) * time.Second, nil
}
