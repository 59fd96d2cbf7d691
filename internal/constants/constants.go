package constants

type contextKey string

const (
	// RequestIDKey request 追蹤用
	RequestIDKey contextKey = "request_id"
	// UserIDKey 上游驗證完的用戶id，沒有表示訪客
	UserIDKey contextKey = "user_id"
)

const (
	// UserIDHeader 身分驗證不在本服務範圍，信任上游帶進來的header
	UserIDHeader = "X-User-ID"
)
