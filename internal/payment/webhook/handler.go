package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tokopay-be/internal/logger"
	"tokopay-be/internal/metrics"
	"tokopay-be/internal/order"
	"tokopay-be/internal/payment"
	"tokopay-be/internal/utils"

	"go.uber.org/zap"
)

// webhookBody covers the field aliases the provider has been observed
// sending: snake_case and camelCase, flat or nested under "data".
type webhookBody struct {
	ID              string `json:"id"`
	InvoiceID       string `json:"invoice_id"`
	ExternalID      string `json:"external_id"`
	ExternalIDCamel string `json:"externalId"`
	InvoiceURL      string `json:"invoice_url"`
	InvoiceURLCamel string `json:"invoiceUrl"`
	Status          string `json:"status"`
	FailureReason   string `json:"failure_reason"`
}

type webhookPayload struct {
	Event string       `json:"event"`
	Data  *webhookBody `json:"data"`
	webhookBody
}

// callback is the canonical record business logic runs against; all
// alias resolution happens before this point.
type callback struct {
	ProviderRef   string
	ExternalID    string
	InvoiceURL    string
	Status        string
	FailureReason string
}

func (p *webhookPayload) normalize() callback {
	b := p.webhookBody
	if p.Data != nil {
		b = *p.Data
	}

	cb := callback{
		ProviderRef:   b.ID,
		ExternalID:    b.ExternalID,
		InvoiceURL:    b.InvoiceURL,
		Status:        b.Status,
		FailureReason: b.FailureReason,
	}
	if cb.ProviderRef == "" {
		cb.ProviderRef = b.InvoiceID
	}
	if cb.ExternalID == "" {
		cb.ExternalID = b.ExternalIDCamel
	}
	if cb.InvoiceURL == "" {
		cb.InvoiceURL = b.InvoiceURLCamel
	}
	return cb
}

// Handler reconciles asynchronous provider callbacks with stored orders.
type Handler struct {
	OrderSvc order.Service
	Gateway  payment.Gateway
	Metrics  *metrics.WebhookMetrics
}

func NewHandler(orderSvc order.Service, gateway payment.Gateway, m *metrics.WebhookMetrics) *Handler {
	if m == nil {
		m = &metrics.WebhookMetrics{}
	}
	return &Handler{
		OrderSvc: orderSvc,
		Gateway:  gateway,
		Metrics:  m,
	}
}

// ServeHTTP is the POST /api/webhook/xendit route handler.
//
// Response policy: 401 only for a bad callback token, 400/404 for
// payloads that will never succeed on retry, and 200 for everything
// else — including internal errors — so the provider does not
// retry-storm a permanently broken request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)
	h.Metrics.Received.Inc()

	// Auth comes before any data-store access.
	if err := h.Gateway.VerifyCallbackToken(r); err != nil {
		h.Metrics.Unauthorized.Inc()
		utils.WriteJSONError(w, "invalid callback token", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteJSONError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	cb := payload.normalize()
	log = log.With(
		zap.String("external_id", cb.ExternalID),
		zap.String("provider_ref", cb.ProviderRef),
		zap.String("provider_status", cb.Status),
	)

	if cb.Status == "" {
		log.Warn("webhook missing status")
		utils.WriteJSONError(w, "missing status", http.StatusBadRequest)
		return
	}

	o, err := h.OrderSvc.ResolveWebhookOrder(ctx, cb.ExternalID, cb.ProviderRef)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			// Resending the same unresolvable payload will never
			// succeed, so a non-2xx is safe here.
			h.Metrics.NotFound.Inc()
			log.Warn("webhook for unknown order")
			utils.WriteJSONError(w, "order not found", http.StatusNotFound)
			return
		}
		log.Error("order resolution failed", zap.Error(err))
		utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	newStatus := payment.MapProviderStatus(cb.Status)

	update, err := h.OrderSvc.ApplyPaymentStatus(ctx, o, newStatus, cb.ProviderRef, cb.Status, cb.FailureReason)
	if err != nil {
		log.Error("failed to apply payment status", zap.Error(err))
		utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	if !update.Applied {
		h.Metrics.AlreadyFinal.Inc()
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"alreadyFinal": true,
			"status":       update.Status,
		})
		return
	}

	h.Metrics.Applied.Inc()
	log.Info("webhook processed", zap.String("status", string(update.Status)))
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"status": update.Status,
	})
}
