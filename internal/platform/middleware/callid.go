// Package middleware holds the HTTP middleware chain: call-id correlation
// and per-endpoint bearer authentication.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"spapi/pkg/requestcontext"
)

// CallIDHeader carries the correlation id to and from callers and
// collaborators.
const CallIDHeader = "x-callId"

// CallID attaches a correlation id and the request time to the context.
// An inbound header is honored when it is a UUID, otherwise a fresh id is
// generated. The id is echoed on the response and as "feilreferanse" in
// error envelopes.
func CallID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callID := r.Header.Get(CallIDHeader)
		if _, err := uuid.Parse(callID); err != nil {
			callID = uuid.NewString()
		}
		ctx := requestcontext.WithCallID(r.Context(), callID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		w.Header().Set(CallIDHeader, callID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
