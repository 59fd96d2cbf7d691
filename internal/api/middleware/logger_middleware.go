package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/rs/zerolog"
)

type StatusRecoder struct {
	http.ResponseWriter
	status int
}

func (w *StatusRecoder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *StatusRecoder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func getRequestID(r *http.Request) string {
	requestId := "unknown"
	if v := r.Context().Value(constants.RequestIDKey); v != nil {
		requestId = v.(string)
	}
	return requestId
}

// 記錄request 請求
// 有一起處理recover
func LoggerMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil {
				temp := zerolog.New(os.Stdout).With().Timestamp().Logger()
				logger = &temp
			}

			recoder := &StatusRecoder{
				ResponseWriter: w,
			}
			start := time.Now()

			defer func() {
				if err := recover(); err != nil {
					var errMsg string
					if e, ok := err.(error); ok {
						errMsg = e.Error()
					} else {
						errMsg = fmt.Sprintf("%v", err)
					}

					logger.Error().
						Str("request_id", getRequestID(r)).
						Str("method", r.Method).
						Str("url", r.URL.String()).
						Str("error", errMsg).
						Msg("request panicked")

					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal Server Error",
					})
				}
			}()

			next.ServeHTTP(recoder, r)

			userID := "guest"
			if id, ok := UserIDFromContext(r.Context()); ok {
				userID = fmt.Sprintf("%d", id)
			}

			logger.Info().
				Str("request_id", getRequestID(r)).
				Str("user_id", userID).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", recoder.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request completed")
		})
	}
}
