package domain

// PaymentPeriod is one sick-pay payment period as returned by the
// payment-history service. Ephemeral: it lives for a single request and is
// never stored.
type PaymentPeriod struct {
	Fom                Date
	Tom                Date
	OrganizationNumber *OrganizationNumber
	Grad               int
	Tags               []string
}
