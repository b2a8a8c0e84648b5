package checkout

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	errors "github.com/frahmantamala/checkout-gateway/internal"
	"github.com/frahmantamala/checkout-gateway/internal/transport"
	"github.com/frahmantamala/checkout-gateway/pkg/logger"
)

const maxRequestBody = 64 << 10

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     service,
	}
}

// CreateCheckout handles POST /api/create-charge and POST /api/create-checkout
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context())

	var req CheckoutRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req)
	if err != nil && !stderrors.Is(err, io.EOF) {
		log.Warn("CreateCheckout: failed to parse request body", "error", err)
		h.HandleError(w, errors.ErrInvalidRequestBody)
		return
	}

	result, err := h.Service.InitiateCheckout(r.Context(), &req)

	// the caller went away; there is nobody left to answer
	if r.Context().Err() != nil {
		log.Warn("CreateCheckout: request cancelled by caller", "error", r.Context().Err())
		return
	}

	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
