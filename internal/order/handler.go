package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"tokopay-be/internal/logger"
	"tokopay-be/internal/payment"
	"tokopay-be/internal/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{Svc: svc}
}

// checkoutItemRequest tolerates the price/qty aliases older clients send.
type checkoutItemRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Qty       int    `json:"qty"`
}

type checkoutRequest struct {
	Customer Customer              `json:"customer"`
	Items    []checkoutItemRequest `json:"items"`
	Amounts  struct {
		Tax      int64  `json:"tax"`
		Shipping int64  `json:"shipping"`
		Currency string `json:"currency"`
	} `json:"amounts"`
	Notes string `json:"notes"`
}

type checkoutResponse struct {
	Success            bool   `json:"success"`
	OrderID            string `json:"orderId"`
	InvoiceURL         string `json:"invoiceUrl,omitempty"`
	Amount             int64  `json:"amount"`
	Status             string `json:"status"`
	NeedsManualPayment bool   `json:"needsManualPayment,omitempty"`
}

// Checkout handles POST /api/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	input := CheckoutInput{
		Customer: req.Customer,
		Tax:      req.Amounts.Tax,
		Shipping: req.Amounts.Shipping,
		Currency: req.Amounts.Currency,
		Notes:    req.Notes,
	}
	for _, it := range req.Items {
		price := it.UnitPrice
		if price == 0 {
			price = it.Price
		}
		qty := it.Quantity
		if qty == 0 {
			qty = it.Qty
		}
		input.Items = append(input.Items, CheckoutItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: price,
			Quantity:  qty,
		})
	}

	result, err := h.Svc.Checkout(r.Context(), input)
	if err != nil {
		if isValidationError(err) {
			utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.FromCtx(r.Context()).Error("checkout failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, checkoutResponse{
		Success:            true,
		OrderID:            result.OrderID,
		InvoiceURL:         result.InvoiceURL,
		Amount:             result.Amount,
		Status:             string(result.Status),
		NeedsManualPayment: result.NeedsManualPayment,
	})
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrEmptyItems) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidTotal)
}

// GetOrder handles GET /api/orders/{id}, used by the thank-you page to
// poll payment state.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteJSONError(w, "order id required", http.StatusBadRequest)
		return
	}

	o, err := h.Svc.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			utils.WriteJSONError(w, "order not found", http.StatusNotFound)
			return
		}
		logger.FromCtx(r.Context()).Error("get order failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, o)
}

type adminOrderRow struct {
	ID            string      `json:"id"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	Items         []OrderItem `json:"items"`
	TotalAmount   int64       `json:"totalAmount"`
	PaymentStatus string      `json:"paymentStatus"`
	InvoiceURL    string      `json:"invoiceUrl"`
}

type adminOrdersResponse struct {
	Data       []adminOrderRow `json:"data"`
	NextCursor *string         `json:"nextCursor"`
}

// AdminOrders handles GET /api/admin/orders with the dashboard's
// status filter (waiting|paid|all) and cursor pagination.
func (h *Handler) AdminOrders(w http.ResponseWriter, r *http.Request) {
	var status payment.Status
	switch r.URL.Query().Get("status") {
	case "waiting":
		status = payment.StatusPending
	case "paid":
		status = payment.StatusPaid
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	cursor := r.URL.Query().Get("cursor")

	orders, nextCursor, err := h.Svc.ListOrders(r.Context(), status, limit, cursor)
	if err != nil {
		logger.FromCtx(r.Context()).Error("list orders failed", zap.Error(err))
		utils.WriteJSONError(w, "error fetching orders", http.StatusInternalServerError)
		return
	}

	rows := make([]adminOrderRow, 0, len(orders))
	for _, o := range orders {
		items := o.Items
		if items == nil {
			items = []OrderItem{}
		}
		rows = append(rows, adminOrderRow{
			ID:            o.ID,
			CreatedAt:     o.CreatedAt,
			UpdatedAt:     o.UpdatedAt,
			Items:         items,
			TotalAmount:   o.Amounts.Total,
			PaymentStatus: string(o.Payment.Status),
			InvoiceURL:    o.Payment.InvoiceURL,
		})
	}

	resp := adminOrdersResponse{Data: rows}
	if nextCursor != "" {
		resp.NextCursor = &nextCursor
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}
