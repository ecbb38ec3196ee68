// Package audit builds and durably emits the legally mandated record of
// every disclosure. Writes are synchronous and fail-closed: if the record
// cannot be acknowledged, the disclosure must not complete.
package audit

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"spapi/internal/consumer"
	"spapi/pkg/domain"
	dErrors "spapi/pkg/domain-errors"
)

// Sender appends one serialized record to the durable log and returns only
// after the write is acknowledged.
type Sender interface {
	Send(ctx context.Context, record []byte) error
}

// record is the wire format expected by the central access log.
type record struct {
	Person              string `json:"person"`
	Mottaker            string `json:"mottaker"`
	Tema                string `json:"tema"`
	BehandlingsGrunnlag string `json:"behandlingsGrunnlag"`
	UthentingsTidspunkt string `json:"uthentingsTidspunkt"`
	LeverteData         string `json:"leverteData"`
}

const tema = "SYK"

// Trail emits one audit record per disclosure.
type Trail struct {
	sender    Sender
	secureLog *slog.Logger
	now       func() time.Time
}

type Option func(*Trail)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Trail) { t.now = now }
}

func NewTrail(sender Sender, secureLog *slog.Logger, opts ...Option) *Trail {
	t := &Trail{sender: sender, secureLog: secureLog, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Logg writes the audit record for one disclosure. leverteData must be the
// exact bytes returned to the caller — the record stores their base64, not
// a re-serialization, so the trail is provably faithful to the response.
func (t *Trail) Logg(ctx context.Context, person domain.PersonIdentifier, cons *consumer.Consumer, leverteData []byte) error {
	entry, err := json.Marshal(record{
		Person:              person.String(),
		Mottaker:            cons.OrganizationNumber.String(),
		Tema:                tema,
		BehandlingsGrunnlag: cons.LegalBasis.String(),
		UthentingsTidspunkt: t.now().Format("2006-01-02T15:04:05.999999999"),
		LeverteData:         base64.StdEncoding.EncodeToString(leverteData),
	})
	if err != nil {
		return dErrors.Wrap(dErrors.CodeAuditFailed, "klarte ikke bygge sporingslogginnslag", err)
	}
	if err := t.sender.Send(ctx, entry); err != nil {
		return dErrors.Wrap(dErrors.CodeAuditFailed, "klarte ikke skrive sporingslogg", err)
	}
	t.secureLog.InfoContext(ctx, "sendte data til konsument",
		"konsument", cons.Name,
		"person", person.String(),
		"leverte_data", string(leverteData),
		"sporingslogg", string(entry),
	)
	return nil
}
