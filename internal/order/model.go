package order

import (
	"time"

	"tokopay-be/internal/payment"
)

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"lineTotal"`
}

// Amounts are computed once at order creation and never recomputed.
// Subtotal = sum of line totals; Total = Subtotal + Tax + Shipping.
type Amounts struct {
	Subtotal int64  `json:"subtotal"`
	Tax      int64  `json:"tax"`
	Shipping int64  `json:"shipping"`
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

type PaymentInfo struct {
	Provider      string         `json:"provider"`
	ProviderRef   string         `json:"providerRef"`
	Status        payment.Status `json:"status"`
	InvoiceURL    string         `json:"invoiceUrl"`
	Channel       string         `json:"channel"`
	FailureReason string         `json:"failureReason"`
	PaidAt        *time.Time     `json:"paidAt,omitempty"`
	NotifPaidSent bool           `json:"notifPaidSent"`
}

type Order struct {
	ID            string      `json:"id"`
	InvoiceNumber string      `json:"invoiceNumber"`
	Customer      Customer    `json:"customer"`
	Items         []OrderItem `json:"items"`
	Amounts       Amounts     `json:"amounts"`
	Payment       PaymentInfo `json:"payment"`
	Notes         string      `json:"notes"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// ExternalID is the correlation id sent to the payment provider.
func (o *Order) ExternalID() string {
	return payment.ExternalIDPrefix + o.ID
}
