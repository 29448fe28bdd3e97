package product

import (
	"errors"
	"net/http"

	"tokopay-be/internal/logger"
	"tokopay-be/internal/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{Svc: svc}
}

// List handles GET /api/products?category=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	products, err := h.Svc.ListActive(r.Context(), category)
	if err != nil {
		logger.FromCtx(r.Context()).Error("list products failed", zap.Error(err))
		utils.WriteJSONError(w, "error fetching products", http.StatusInternalServerError)
		return
	}

	if products == nil {
		products = []*Product{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": products})
}

// Get handles GET /api/products/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			utils.WriteJSONError(w, "product not found", http.StatusNotFound)
			return
		}
		logger.FromCtx(r.Context()).Error("get product failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, p)
}
