package webhook

import (
	"io"
	"net/http"

	"github.com/frahmantamala/checkout-gateway/internal"
	"github.com/frahmantamala/checkout-gateway/internal/transport"
	"github.com/frahmantamala/checkout-gateway/pkg/logger"
)

const maxWebhookBody = 1 << 20

type Handler struct {
	*transport.BaseHandler
	dispatcher *Dispatcher
}

func NewHandler(base *transport.BaseHandler, dispatcher *Dispatcher) *Handler {
	return &Handler{BaseHandler: base, dispatcher: dispatcher}
}

// HandleNotification handles POST /api/webhook/helio. The sender always gets
// 200 {"received": true}; nothing is verified and nothing is retried.
func (h *Handler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context())

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		log.Error("failed to read webhook body", "error", err)
	}

	n, err := ParseNotification(raw)
	if err != nil {
		log.Warn("webhook body is not a JSON object", "error", err, "size", len(raw))
	}

	log.Info("received webhook", "event", n.Event, "payload", n.Body)

	// subscribers run after the response is written
	ack := h.dispatcher.Dispatch(internal.Detached(r.Context()), n)

	h.WriteJSON(w, http.StatusOK, ack)
}
