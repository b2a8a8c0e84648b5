package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/checkout-gateway/internal/core/common/validation"
)

// CheckoutRequest represents the request payload for POST /api/create-charge
type CheckoutRequest struct {
	Amount   *decimal.Decimal `json:"amount"`
	Currency string           `json:"currency,omitempty"`
}

// Validate checks the amount only. Currency is free-form and defaulted by the service.
func (r *CheckoutRequest) Validate() error {
	if appErr := validation.ValidateCheckoutAmount(r.Amount); appErr != nil {
		return appErr
	}
	return nil
}

func (r *CheckoutRequest) currencyOr(fallback string) string {
	if c := strings.TrimSpace(r.Currency); c != "" {
		return c
	}
	return fallback
}
