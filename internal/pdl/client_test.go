package pdl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spapi/internal/consumer"
	"spapi/pkg/domain"
	"spapi/pkg/requestcontext"
)

type staticTokens string

func (s staticTokens) Get(context.Context, string) (string, error) {
	return string(s), nil
}

func person(t *testing.T, s string) domain.PersonIdentifier {
	t.Helper()
	p, err := domain.ParsePersonIdentifier(s)
	require.NoError(t, err)
	return p
}

func TestHentAlle(t *testing.T) {
	var gotBody map[string]any
	var gotBehandlingsnummer, gotCallID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/graphql", r.URL.Path)
		gotBehandlingsnummer = r.Header.Get("behandlingsnummer")
		gotCallID = r.Header.Get("Nav-Call-Id")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_, _ = w.Write([]byte(`{"data":{"hentIdenter":{"identer":[
			{"ident":"12345678901"},
			{"ident":"10987654321"}
		]}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "nav:pdl", srv.Client(), staticTokens("abc123"))
	cons := &consumer.Consumer{Name: "Testkonsument", ProcessingNumber: "B709"}
	ctx := requestcontext.WithCallID(context.Background(), "callid-1")

	identifiers, err := client.HentAlle(ctx, person(t, "12345678901"), cons)
	require.NoError(t, err)

	assert.Equal(t, "B709", gotBehandlingsnummer)
	assert.Equal(t, "callid-1", gotCallID)
	assert.Contains(t, gotBody["query"], "hentIdenter")
	variables, ok := gotBody["variables"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "12345678901", variables["ident"])

	require.Len(t, identifiers, 2)
	assert.Equal(t, "12345678901", identifiers[0].String())
	assert.Equal(t, "10987654321", identifiers[1].String())
}

func TestHentAlleAlwaysIncludesQueriedIdentifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"hentIdenter":{"identer":[]}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "nav:pdl", srv.Client(), staticTokens("abc123"))
	identifiers, err := client.HentAlle(context.Background(), person(t, "12345678901"), &consumer.Consumer{})
	require.NoError(t, err)

	require.Len(t, identifiers, 1)
	assert.Equal(t, "12345678901", identifiers[0].String())
}

func TestHentAlleNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "nav:pdl", srv.Client(), staticTokens("abc123"))
	_, err := client.HentAlle(context.Background(), person(t, "12345678901"), &consumer.Consumer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
