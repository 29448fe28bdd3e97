package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tokopay-be/internal/logger"
	"tokopay-be/internal/metrics"
	"tokopay-be/internal/payment"
	"tokopay-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier delivers customer notifications. Implementations log and
// swallow delivery failures; a lost message must never fail an order
// mutation.
type Notifier interface {
	OrderCheckout(ctx context.Context, o *Order)
	OrderPaid(ctx context.Context, o *Order)
	OrderFailed(ctx context.Context, o *Order, providerStatus string)
}

type CheckoutItem struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int
}

type CheckoutInput struct {
	Customer Customer
	Items    []CheckoutItem
	Tax      int64
	Shipping int64
	Currency string
	Notes    string
}

type CheckoutResult struct {
	OrderID            string
	InvoiceURL         string
	Amount             int64
	Status             payment.Status
	NeedsManualPayment bool
}

// StatusUpdate is the outcome of applying a webhook status to an order.
type StatusUpdate struct {
	Applied bool
	Status  payment.Status
}

type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, status payment.Status, limit int, cursor string) ([]*Order, string, error)

	ResolveWebhookOrder(ctx context.Context, externalID, providerRef string) (*Order, error)
	ApplyPaymentStatus(ctx context.Context, o *Order, newStatus payment.Status, providerRef, providerStatus, failureReason string) (*StatusUpdate, error)
}

type service struct {
	repo     Repository
	gateway  payment.Gateway
	notifier Notifier
	appURL   string
	metrics  *metrics.CheckoutMetrics
}

func NewService(repo Repository, gateway payment.Gateway, notifier Notifier, appURL string, m *metrics.CheckoutMetrics) Service {
	if m == nil {
		m = &metrics.CheckoutMetrics{}
	}
	return &service{
		repo:     repo,
		gateway:  gateway,
		notifier: notifier,
		appURL:   strings.TrimRight(appURL, "/"),
		metrics:  m,
	}
}

// Checkout validates the cart submission, persists a PENDING order, and
// requests a hosted invoice. A provider failure still yields a created
// order: the caller gets NeedsManualPayment instead of an error.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.Int("item_count", len(input.Items)),
	)

	if len(input.Items) == 0 {
		return nil, ErrEmptyItems
	}

	items := make([]OrderItem, 0, len(input.Items))
	var subtotal int64

	for i, in := range input.Items {
		if in.Quantity <= 0 {
			log.Warn("invalid quantity", zap.Int("index", i))
			return nil, ErrInvalidQuantity
		}
		if in.UnitPrice < 0 {
			log.Warn("invalid price", zap.Int("index", i))
			return nil, ErrInvalidPrice
		}

		lineTotal := in.UnitPrice * int64(in.Quantity)
		subtotal += lineTotal

		items = append(items, OrderItem{
			ProductID: in.ProductID,
			Name:      in.Name,
			UnitPrice: in.UnitPrice,
			Quantity:  in.Quantity,
			LineTotal: lineTotal,
		})
	}

	total := subtotal + input.Tax + input.Shipping
	if total <= 0 {
		return nil, ErrInvalidTotal
	}

	currency := input.Currency
	if currency == "" {
		currency = "IDR"
	}

	now := time.Now()
	o := &Order{
		ID:            uuid.New().String(),
		InvoiceNumber: utils.GenerateInvoiceNumber(),
		Customer:      input.Customer,
		Items:         items,
		Amounts: Amounts{
			Subtotal: subtotal,
			Tax:      input.Tax,
			Shipping: input.Shipping,
			Total:    total,
			Currency: currency,
		},
		Payment: PaymentInfo{
			Provider: payment.ProviderXendit,
			Status:   payment.StatusPending,
		},
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	log = log.With(
		zap.String("order_id", o.ID),
		zap.Int64("subtotal", subtotal),
		zap.Int64("total", total),
	)

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error("failed to persist order", zap.Error(err))
		return nil, err
	}
	s.metrics.OrdersCreated.Inc()

	inv, err := s.gateway.CreateInvoice(ctx, payment.CreateInvoiceInput{
		ExternalID:         o.ExternalID(),
		Amount:             total,
		Currency:           currency,
		PayerEmail:         input.Customer.Email,
		Description:        fmt.Sprintf("Payment for order %s", o.ID),
		SuccessRedirectURL: fmt.Sprintf("%s/thankyou/%s", s.appURL, o.ID),
		FailureRedirectURL: fmt.Sprintf("%s/payment?failed=1", s.appURL),
	})
	if err != nil {
		// The order exists; only payment setup failed. Surface a
		// "needs manual payment" signal instead of discarding it.
		log.Error("invoice creation failed", zap.Error(err))
		s.metrics.InvoiceFailed.Inc()

		o.Payment.Status = payment.StatusFailed
		o.Payment.FailureReason = err.Error()
		if dbErr := s.repo.MarkPaymentFailed(ctx, o.ID, err.Error()); dbErr != nil {
			log.Error("failed to record invoice failure", zap.Error(dbErr))
		}

		return &CheckoutResult{
			OrderID:            o.ID,
			Amount:             total,
			Status:             payment.StatusFailed,
			NeedsManualPayment: true,
		}, nil
	}

	if err := s.repo.AttachInvoice(ctx, o.ID, inv.ID, inv.InvoiceURL); err != nil {
		log.Error("failed to attach invoice", zap.Error(err))
		return nil, err
	}
	o.Payment.ProviderRef = inv.ID
	o.Payment.InvoiceURL = inv.InvoiceURL

	log.Info("order created",
		zap.String("provider_ref", inv.ID),
		zap.String("invoice_url", inv.InvoiceURL),
	)

	s.notifier.OrderCheckout(ctx, o)

	return &CheckoutResult{
		OrderID:    o.ID,
		InvoiceURL: inv.InvoiceURL,
		Amount:     total,
		Status:     payment.StatusPending,
	}, nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListOrders(ctx context.Context, status payment.Status, limit int, cursor string) ([]*Order, string, error) {
	return s.repo.List(ctx, status, limit, cursor)
}

// ResolveWebhookOrder maps a callback to a stored order. The correlation
// id (external id) takes precedence; the provider invoice id is the
// fallback when the external id is absent or does not resolve.
func (s *service) ResolveWebhookOrder(ctx context.Context, externalID, providerRef string) (*Order, error) {
	if externalID != "" {
		orderID := strings.TrimPrefix(externalID, payment.ExternalIDPrefix)
		o, err := s.repo.GetByID(ctx, orderID)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
	}

	if providerRef != "" {
		return s.repo.GetByProviderRef(ctx, providerRef)
	}

	return nil, ErrOrderNotFound
}

// ApplyPaymentStatus persists a webhook-reported status. Terminal states
// are immutable: a late or regressive callback is acknowledged without a
// write. The PAID notification is sent at most once per order.
func (s *service) ApplyPaymentStatus(ctx context.Context, o *Order, newStatus payment.Status, providerRef, providerStatus, failureReason string) (*StatusUpdate, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", o.ID),
		zap.String("current_status", string(o.Payment.Status)),
		zap.String("new_status", string(newStatus)),
	)

	if o.Payment.Status.IsTerminal() {
		log.Info("ignoring callback for finalized order")
		return &StatusUpdate{Applied: false, Status: o.Payment.Status}, nil
	}

	var paidAt *time.Time
	if newStatus == payment.StatusPaid {
		now := time.Now()
		paidAt = &now
	}

	reason := ""
	if newStatus == payment.StatusFailed || newStatus == payment.StatusCancelled {
		reason = failureReason
	}

	if err := s.repo.UpdatePaymentStatus(ctx, o.ID, newStatus, providerRef, reason, paidAt); err != nil {
		return nil, err
	}

	o.Payment.Status = newStatus
	if providerRef != "" {
		o.Payment.ProviderRef = providerRef
	}
	o.Payment.FailureReason = reason
	if paidAt != nil {
		o.Payment.PaidAt = paidAt
	}

	switch newStatus {
	case payment.StatusPaid:
		if !o.Payment.NotifPaidSent {
			s.notifier.OrderPaid(ctx, o)
			if err := s.repo.SetPaidNotified(ctx, o.ID); err != nil {
				log.Error("failed to mark paid notification sent", zap.Error(err))
			} else {
				o.Payment.NotifPaidSent = true
			}
		}
	case payment.StatusFailed, payment.StatusCancelled:
		s.notifier.OrderFailed(ctx, o, providerStatus)
	}

	log.Info("payment status updated")
	return &StatusUpdate{Applied: true, Status: newStatus}, nil
}
