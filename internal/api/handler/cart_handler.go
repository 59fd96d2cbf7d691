package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{
		cartService: cartService,
	}
}

// requireUserID 購物車操作一定要有登入身分
func requireUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		api.ErrorJSON(w, http.StatusUnauthorized, "user identity required")
		return 0, false
	}
	return userID, true
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.SuccessJSON(w, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dto.AddCartItemDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), userID, req.ProductID, req.Quantity, req.Size, req.Color)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.SuccessJSON(w, cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	lineID := chi.URLParam(r, "lineID")

	var req dto.UpdateCartItemDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.cartService.UpdateItem(r.Context(), userID, lineID, req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.SuccessJSON(w, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	lineID := chi.URLParam(r, "lineID")

	cart, err := h.cartService.RemoveItem(r.Context(), userID, lineID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.SuccessJSON(w, cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.cartService.Clear(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	api.SuccessJSON(w, nil)
}
