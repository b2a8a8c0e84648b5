package rest

import (
	"net/http"

	"github.com/frahmantamala/checkout-gateway/internal/transport"
)

// ReadinessChecker reports whether the payment provider has real credentials.
type ReadinessChecker interface {
	Configured() bool
	ShapeName() string
}

type HealthResponse struct {
	Status     string `json:"status"`
	Configured bool   `json:"configured"`
	Shape      string `json:"shape,omitempty"`
}

type HealthHandler struct {
	*transport.BaseHandler
	provider ReadinessChecker
}

func NewHealthHandler(base *transport.BaseHandler, provider ReadinessChecker) *HealthHandler {
	return &HealthHandler{BaseHandler: base, provider: provider}
}

// pingHandler → just says service is up
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// healthCheckHandler → always 200; "configured" tells operators whether
// checkouts can succeed at all.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.provider != nil {
		resp.Configured = h.provider.Configured()
		resp.Shape = h.provider.ShapeName()
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
