package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/frahmantamala/checkout-gateway/pkg/logger"
)

const TraceIDHeader = "X-Trace-ID"

type ctxKey string

const traceIDKey ctxKey = "traceID"

// RequestID reuses the caller's X-Trace-ID or mints one, echoes it back and
// binds it to the request-scoped logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		fields := []any{"traceID", traceID}
		if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
			fields = append(fields, "otel_trace_id", sc.TraceID().String())
		}

		ctx := logger.With(r.Context(), fields...)
		ctx = context.WithValue(ctx, traceIDKey, traceID)

		w.Header().Set(TraceIDHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}
