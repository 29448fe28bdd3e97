package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tokopay-be/internal/logger"

	"go.uber.org/zap"
)

const fonnteSendURL = "https://api.fonnte.com/send"

// Sender delivers a WhatsApp message to a normalized phone number.
type Sender interface {
	Send(ctx context.Context, target, message string) error
}

type fonnteSender struct {
	token          string
	httpClient     *http.Client
	attemptTimeout time.Duration
	maxAttempts    int
}

// NewFonnteSender builds the outbound WhatsApp client. Each attempt gets
// its own 10-second timeout and a failed attempt is retried once.
func NewFonnteSender(token string) Sender {
	if token == "" {
		logger.L().Warn("Fonnte token is empty")
	}

	return &fonnteSender{
		token:          token,
		httpClient:     &http.Client{},
		attemptTimeout: 10 * time.Second,
		maxAttempts:    2,
	}
}

func (f *fonnteSender) Send(ctx context.Context, target, message string) error {
	log := logger.FromCtx(ctx).With(zap.String("target", target))

	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		lastErr = f.sendOnce(ctx, target, message)
		if lastErr == nil {
			log.Info("WhatsApp message sent", zap.Int("attempt", attempt))
			return nil
		}
		log.Warn("WhatsApp send attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
	}

	return lastErr
}

func (f *fonnteSender) sendOnce(ctx context.Context, target, message string) error {
	ctx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{
		"target":  target,
		"message": message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fonnteSendURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", f.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("fonnte send failed: HTTP %d %s", resp.StatusCode, string(respBody))
	}

	return nil
}
