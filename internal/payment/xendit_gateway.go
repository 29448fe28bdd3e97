package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tokopay-be/internal/logger"

	"go.uber.org/zap"
)

const xenditBaseURL = "https://api.xendit.co"

type xenditGateway struct {
	secretKey     string
	callbackToken string
	httpClient    *http.Client
}

// NewXenditGateway builds the invoice client. The secret key goes out as
// the basic-auth username with an empty password; the callback token is
// what inbound webhooks must present in x-callback-token.
func NewXenditGateway(secretKey, callbackToken string) Gateway {
	if secretKey == "" {
		logger.L().Warn("Xendit secret key is empty")
	}

	return &xenditGateway{
		secretKey:     secretKey,
		callbackToken: callbackToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type xenditInvoiceRequest struct {
	ExternalID         string `json:"external_id"`
	Amount             int64  `json:"amount"`
	Currency           string `json:"currency"`
	PayerEmail         string `json:"payer_email,omitempty"`
	Description        string `json:"description"`
	SuccessRedirectURL string `json:"success_redirect_url"`
	FailureRedirectURL string `json:"failure_redirect_url"`
}

type xenditInvoiceResponse struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	ErrorCode  string `json:"error_code"`
}

// CreateInvoice performs one outbound request to the provider's invoice
// endpoint. No retry happens here; the caller decides what a failure
// means for the order.
func (x *xenditGateway) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("external_id", input.ExternalID),
		zap.Int64("amount", input.Amount),
		zap.String("currency", input.Currency),
	)

	if input.Currency == "" {
		input.Currency = "IDR"
	}

	body := xenditInvoiceRequest{
		ExternalID:         input.ExternalID,
		Amount:             input.Amount,
		Currency:           input.Currency,
		PayerEmail:         input.PayerEmail,
		Description:        input.Description,
		SuccessRedirectURL: input.SuccessRedirectURL,
		FailureRedirectURL: input.FailureRedirectURL,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Error("Failed to marshal invoice request", zap.Error(err))
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", xenditBaseURL+"/v2/invoices", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}

	req.SetBasicAuth(x.secretKey, "")
	req.Header.Add("Content-Type", "application/json")

	log.Info("Sending invoice request to Xendit")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		log.Error("Xendit request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read xendit response: %w", err)
	}

	var res xenditInvoiceResponse
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("Xendit returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		if err := json.Unmarshal(bodyBytes, &res); err == nil && res.Message != "" {
			return nil, fmt.Errorf("xendit error: %s", res.Message)
		}
		return nil, fmt.Errorf("xendit error: HTTP %d", resp.StatusCode)
	}

	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("Failed decoding Xendit response", zap.Error(err))
		return nil, err
	}

	if res.ID == "" || res.InvoiceURL == "" {
		log.Error("Unexpected Xendit response shape", zap.ByteString("response", bodyBytes))
		return nil, errors.New("unexpected response from xendit")
	}

	log.Info("Xendit invoice created",
		zap.String("invoice_id", res.ID),
		zap.String("status", res.Status),
	)

	return &Invoice{
		ID:         res.ID,
		InvoiceURL: res.InvoiceURL,
		Status:     res.Status,
	}, nil
}

// VerifyCallbackToken checks the shared secret on an inbound webhook.
func (x *xenditGateway) VerifyCallbackToken(r *http.Request) error {
	expected := x.callbackToken
	if expected == "" {
		return nil // skip in dev
	}

	if r.Header.Get("x-callback-token") != expected {
		return errors.New("invalid callback token")
	}
	return nil
}
