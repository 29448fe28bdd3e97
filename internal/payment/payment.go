package payment

import (
	"context"
	"net/http"
)

type Gateway interface {
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error)
	VerifyCallbackToken(r *http.Request) error
}
