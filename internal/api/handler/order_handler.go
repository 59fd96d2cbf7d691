package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/sheetsync"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orderService service.IOrderService
	notifier     *sheetsync.Notifier
	// pricing 計價參數來自設定檔，整個請求生命週期不變
	pricing service.PricingParams
}

func NewOrderHandler(orderService service.IOrderService, notifier *sheetsync.Notifier, pricing service.PricingParams) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{
		orderService: orderService,
		notifier:     notifier,
		pricing:      pricing,
	}
}

// PlaceOrder 登入用戶下單，商品取自購物車
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		api.ErrorJSON(w, http.StatusUnauthorized, "user identity required")
		return
	}

	var req dto.PlaceOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		UserID:          &userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   model.PaymentMethod(req.PaymentMethod),
		Pricing:         h.pricing,
		Notes:           req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.CreatedJSON(w, order)
}

// PlaceGuestOrder 訪客下單，商品直接帶在請求內
func (h *OrderHandler) PlaceGuestOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceGuestOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		GuestInfo:       &model.GuestInfo{Email: req.Email, Phone: req.Phone},
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   model.PaymentMethod(req.PaymentMethod),
		Pricing:         h.pricing,
		Notes:           req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.CreatedJSON(w, order)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.SuccessJSON(w, order)
}

// GetMyOrders 登入用戶的歷史訂單
func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		api.ErrorJSON(w, http.StatusUnauthorized, "user identity required")
		return
	}

	orders, err := h.orderService.GetOrdersByUserID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.SuccessJSON(w, orders)
}

func (h *OrderHandler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.GetAllOrders(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.SuccessJSON(w, orders)
}

// UpdateStatus 訂單狀態轉移，取消會觸發庫存回補
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req dto.UpdateOrderStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.SetOrderStatus(r.Context(), orderID, model.OrderStatus(req.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.SuccessJSON(w, order)
}

// UpdateNotes 更新訂單備註
func (h *OrderHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req dto.UpdateOrderNotesDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.UpdateOrderNotes(r.Context(), orderID, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.SuccessJSON(w, order)
}

// SyncSheets 批次補同步還沒寫到報表的訂單
func (h *OrderHandler) SyncSheets(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil {
		api.ErrorJSON(w, http.StatusServiceUnavailable, "sheet sync is not configured")
		return
	}

	stats, err := h.notifier.SyncPending(r.Context())
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	api.SuccessJSON(w, stats)
}

// UnsyncedCount 尚未同步到報表的訂單數
func (h *OrderHandler) UnsyncedCount(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil {
		api.ErrorJSON(w, http.StatusServiceUnavailable, "sheet sync is not configured")
		return
	}

	count, err := h.notifier.CountPending(r.Context())
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	api.SuccessJSON(w, map[string]int64{"unsynced_count": count})
}
