package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
)

// IdentityMiddleware 從 X-User-ID 取得上游驗證完的用戶身分
// 沒帶或帶了非數字的值一律當訪客處理
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(constants.UserIDHeader)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := strconv.Atoi(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), constants.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext 取出用戶id，第二個返回值表示是否為登入用戶
func UserIDFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(constants.UserIDKey)
	if v == nil {
		return 0, false
	}
	userID, ok := v.(int)
	return userID, ok
}
