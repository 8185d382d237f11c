package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"agora/internal/httputil"
)

// Recovery turns a handler panic into a 500 problem response. The request ID
// set by RequestLogger is echoed in the body so a report can be matched to the
// stack in the logs. http.ErrAbortHandler is re-raised for net/http to handle.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				requestID := w.Header().Get("X-Request-ID")
				logger.Error("panic recovered",
					"error", rec,
					"request_id", requestID,
					"path", r.URL.Path,
					"method", r.Method,
					"stack", string(debug.Stack()),
				)

				if requestID == "" {
					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, "internal server error",
					map[string]interface{}{"requestId": requestID})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
