package handler

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

// writeServiceError 把服務層錯誤翻成http狀態碼
/*
	400: 驗證失敗 / 尺寸顏色不合法 / 商品已下架 / 購物車是空的
	404: 商品 / 訂單 / 購物車條目不存在
	409: 庫存不足 / 狀態轉移不合法 (請求本身合法但跟當下狀態衝突)
	500: 其餘
*/
func writeServiceError(w http.ResponseWriter, err error) {
	var stockErr *service.InsufficientStockError
	var transitionErr *service.InvalidTransitionError

	switch {
	case errors.As(err, &stockErr):
		api.ErrorJSON(w, http.StatusConflict, stockErr.Error())
	case errors.As(err, &transitionErr):
		api.ErrorJSON(w, http.StatusConflict, transitionErr.Error())
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrCartItemNotFound):
		api.ErrorJSON(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrProductInactive),
		errors.Is(err, service.ErrInvalidSize),
		errors.Is(err, service.ErrInvalidColor),
		errors.Is(err, service.ErrCartEmpty):
		api.ErrorJSON(w, http.StatusBadRequest, err.Error())
	default:
		api.ErrorJSON(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
