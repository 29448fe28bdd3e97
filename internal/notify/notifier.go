package notify

import (
	"context"
	"fmt"
	"strings"

	"tokopay-be/internal/logger"
	"tokopay-be/internal/metrics"
	"tokopay-be/internal/order"

	"go.uber.org/zap"
)

// Notifier implements order.Notifier over a WhatsApp sender. Delivery
// failures are logged and swallowed: a failed message must never fail
// the order mutation or webhook acknowledgment that triggered it.
type Notifier struct {
	sender  Sender
	appName string
	metrics *metrics.CheckoutMetrics
}

func NewNotifier(sender Sender, appName string, m *metrics.CheckoutMetrics) *Notifier {
	if m == nil {
		m = &metrics.CheckoutMetrics{}
	}
	return &Notifier{
		sender:  sender,
		appName: appName,
		metrics: m,
	}
}

var _ order.Notifier = (*Notifier)(nil)

func (n *Notifier) OrderCheckout(ctx context.Context, o *order.Order) {
	var lines []string
	for i, item := range o.Items {
		lines = append(lines, fmt.Sprintf("%d. %s (%dx) = Rp%s",
			i+1, item.Name, item.Quantity, formatRupiah(item.LineTotal)))
	}
	itemList := strings.Join(lines, "\n")

	msg := CheckoutMessage(n.appName, o.ID, o.Amounts.Total, itemList, o.Payment.InvoiceURL)
	n.send(ctx, o, msg, "checkout")
}

func (n *Notifier) OrderPaid(ctx context.Context, o *order.Order) {
	msg := PaidMessage(n.appName, o.ID, o.Amounts.Total)
	n.send(ctx, o, msg, "paid")
}

func (n *Notifier) OrderFailed(ctx context.Context, o *order.Order, providerStatus string) {
	status := providerStatus
	if status == "" {
		status = string(o.Payment.Status)
	}
	msg := FailedMessage(n.appName, o.ID, status)
	n.send(ctx, o, msg, "failed")
}

func (n *Notifier) send(ctx context.Context, o *order.Order, message, kind string) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", o.ID),
		zap.String("notification", kind),
	)

	phone := NormalizePhone(o.Customer.Phone)
	if phone == "" {
		log.Warn("no phone number on order, skipping notification")
		return
	}

	if err := n.sender.Send(ctx, phone, message); err != nil {
		n.metrics.NotifFailed.Inc()
		log.Error("failed to send WhatsApp notification", zap.Error(err))
		return
	}
	n.metrics.NotifSent.Inc()
}
