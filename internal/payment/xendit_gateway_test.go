package payment

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestXenditGateway_CreateInvoice(t *testing.T) {
	secretKey := "test-secret"
	gw := NewXenditGateway(secretKey, "cb-token").(*xenditGateway)

	input := CreateInvoiceInput{
		ExternalID:         "ORDER-abc-123",
		Amount:             250000,
		PayerEmail:         "buyer@example.com",
		Description:        "Payment for order abc-123",
		SuccessRedirectURL: "https://shop.example.com/thankyou/abc-123",
		FailureRedirectURL: "https://shop.example.com/payment?failed=1",
	}

	t.Run("Success", func(t *testing.T) {
		respBody := `{
			"id": "inv-123",
			"invoice_url": "https://checkout.xendit.co/web/inv-123",
			"status": "PENDING"
		}`

		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, "POST", req.Method)
			assert.Equal(t, "https://api.xendit.co/v2/invoices", req.URL.String())

			// Verify Auth: secret key as username, empty password
			userName, pass, ok := req.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, secretKey, userName)
			assert.Equal(t, "", pass)

			body, _ := io.ReadAll(req.Body)
			assert.Contains(t, string(body), `"external_id":"ORDER-abc-123"`)
			assert.Contains(t, string(body), `"currency":"IDR"`)

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(respBody)),
				Header:     make(http.Header),
			}
		})

		inv, err := gw.CreateInvoice(context.Background(), input)
		assert.NoError(t, err)
		assert.NotNil(t, inv)
		assert.Equal(t, "inv-123", inv.ID)
		assert.Equal(t, "https://checkout.xendit.co/web/inv-123", inv.InvoiceURL)
		assert.Equal(t, "PENDING", inv.Status)
	})

	t.Run("Success_StatusCreated", func(t *testing.T) {
		respBody := `{"id":"inv-201","invoice_url":"https://checkout.xendit.co/web/inv-201","status":"PENDING"}`

		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusCreated,
				Body:       io.NopCloser(bytes.NewBufferString(respBody)),
				Header:     make(http.Header),
			}
		})

		inv, err := gw.CreateInvoice(context.Background(), input)
		assert.NoError(t, err)
		assert.Equal(t, "inv-201", inv.ID)
	})

	t.Run("APIError_WithMessage", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusBadRequest,
				Body:       io.NopCloser(bytes.NewBufferString(`{"error_code":"INVALID_DATA","message":"amount is invalid"}`)),
				Header:     make(http.Header),
			}
		})

		_, err := gw.CreateInvoice(context.Background(), input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "amount is invalid")
	})

	t.Run("APIError_NoMessage", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusBadGateway,
				Body:       io.NopCloser(bytes.NewBufferString(`oops`)),
				Header:     make(http.Header),
			}
		})

		_, err := gw.CreateInvoice(context.Background(), input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 502")
	})

	t.Run("NetworkError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		_, err := gw.CreateInvoice(context.Background(), input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("InvalidJSONResponse", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{invalid-json`)),
				Header:     make(http.Header),
			}
		})

		_, err := gw.CreateInvoice(context.Background(), input)
		assert.Error(t, err)
	})

	t.Run("MissingInvoiceURL", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{"id":"inv-123","status":"PENDING"}`)),
				Header:     make(http.Header),
			}
		})

		_, err := gw.CreateInvoice(context.Background(), input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected response")
	})
}

func TestXenditGateway_VerifyCallbackToken(t *testing.T) {
	t.Run("Valid token", func(t *testing.T) {
		gw := NewXenditGateway("sk", "cb-token")
		req := httptest.NewRequest("POST", "/api/webhook/xendit", nil)
		req.Header.Set("x-callback-token", "cb-token")

		assert.NoError(t, gw.VerifyCallbackToken(req))
	})

	t.Run("Missing token", func(t *testing.T) {
		gw := NewXenditGateway("sk", "cb-token")
		req := httptest.NewRequest("POST", "/api/webhook/xendit", nil)

		assert.Error(t, gw.VerifyCallbackToken(req))
	})

	t.Run("Wrong token", func(t *testing.T) {
		gw := NewXenditGateway("sk", "cb-token")
		req := httptest.NewRequest("POST", "/api/webhook/xendit", nil)
		req.Header.Set("x-callback-token", "other")

		assert.Error(t, gw.VerifyCallbackToken(req))
	})

	t.Run("Unconfigured token skips check", func(t *testing.T) {
		gw := NewXenditGateway("sk", "")
		req := httptest.NewRequest("POST", "/api/webhook/xendit", nil)

		assert.NoError(t, gw.VerifyCallbackToken(req))
	})
}
