package token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAzureFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "client-1", r.Form.Get("client_id"))
		assert.Equal(t, "hemmelig", r.Form.Get("client_secret"))
		assert.Equal(t, "nav:spokelse", r.Form.Get("scope"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc123","expires_in":3599}`))
	}))
	defer srv.Close()

	fetcher := NewAzureFetcher(srv.URL, "client-1", "hemmelig", srv.Client())
	token, expiresIn, err := fetcher.Fetch(context.Background(), "nav:spokelse")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
	assert.Equal(t, 3599*time.Second, expiresIn)
}

func TestAzureFetcherNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	fetcher := NewAzureFetcher(srv.URL, "client-1", "hemmelig", srv.Client())
	_, _, err := fetcher.Fetch(context.Background(), "nav:spokelse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestAzureFetcherMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"expires_in":3599}`))
	}))
	defer srv.Close()

	fetcher := NewAzureFetcher(srv.URL, "client-1", "hemmelig", srv.Client())
	_, _, err := fetcher.Fetch(context.Background(), "nav:spokelse")
	require.Error(t, err)
}
