package payment

// ProviderXendit is the only provider this backend talks to.
const ProviderXendit = "xendit"

// ExternalIDPrefix is prepended to the order id in the external_id sent
// to the provider, and stripped back off when a webhook arrives.
const ExternalIDPrefix = "ORDER-"

// Status is the internal payment status stored on an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether a status permits no further transition.
// PENDING is the only non-terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusFailed || s == StatusCancelled
}

// CreateInvoiceInput is the request for a hosted invoice.
type CreateInvoiceInput struct {
	ExternalID         string
	Amount             int64
	Currency           string
	PayerEmail         string
	Description        string
	SuccessRedirectURL string
	FailureRedirectURL string
}

// Invoice is the provider-side invoice reference.
type Invoice struct {
	ID         string
	InvoiceURL string
	Status     string
}
