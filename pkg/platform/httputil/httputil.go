// Package httputil centralizes translation of domain errors into the JSON
// error envelope, so every handler and middleware responds the same way.
package httputil

import (
	"net/http"

	json "github.com/goccy/go-json"

	dErrors "spapi/pkg/domain-errors"
	"spapi/pkg/requestcontext"
)

type errorEnvelope struct {
	Feilmelding   string `json:"feilmelding"`
	Feilreferanse string `json:"feilreferanse"`
}

// WriteError maps err to a status via its domain error code. Internal
// failures get a generic message; the reference id lets callers correlate
// with the diagnostic log.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	message := err.Error()
	if status := dErrors.ToHTTPStatus(code); status >= http.StatusInternalServerError {
		WriteErrorMessage(w, r, status, "Uventet feil. Ta kontakt med NAV om feilen vedvarer.")
		return
	}
	WriteErrorMessage(w, r, dErrors.ToHTTPStatus(code), message)
}

// WriteErrorMessage writes the error envelope with an explicit status and
// message.
func WriteErrorMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Feilmelding:   message,
		Feilreferanse: requestcontext.CallID(r.Context()),
	})
}
