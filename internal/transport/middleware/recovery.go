package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/checkout-gateway/internal"
	"github.com/frahmantamala/checkout-gateway/internal/transport"
	"github.com/frahmantamala/checkout-gateway/pkg/logger"
)

// RecoveryMiddleware turns a handler panic into a 500 JSON error
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			log := logger.From(r.Context())
			log.Error("panic recovered",
				"error", rec,
				"method", r.Method,
				"url", r.URL.String(),
				"stack", string(debug.Stack()))

			transport.NewBaseHandler(log).HandleError(w, internal.NewInternalError("unexpected server error", nil))
		}()

		next.ServeHTTP(w, r)
	})
}
