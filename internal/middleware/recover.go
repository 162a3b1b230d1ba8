package middleware

import (
	"net/http"
	"runtime/debug"
)

// WithRecover перехватывает панику хендлера и отвечает 500.
func WithRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				sugar.Errorw("panic", "panic", v, "uri", r.URL.Path, "stack", string(debug.Stack()))
				writeMessage(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
