package checkout

import (
	"context"
	"encoding/json"

	"github.com/frahmantamala/checkout-gateway/internal/provider"
)

// ProviderAPI is the outbound side of a checkout.
type ProviderAPI interface {
	Configured() bool
	CreateCheckout(ctx context.Context, order provider.Order) (*provider.Session, error)
}

type ServiceAPI interface {
	InitiateCheckout(ctx context.Context, req *CheckoutRequest) (*Checkout, error)
}

// Checkout is the success result handed back to the client. Exactly one of
// ChargeToken and CheckoutURL is set for a given payload shape, sometimes both.
type Checkout struct {
	Success     bool        `json:"success"`
	ChargeToken string      `json:"chargeToken,omitempty"`
	CheckoutURL string      `json:"checkoutUrl,omitempty"`
	ChargeID    string      `json:"chargeId,omitempty"`
	Amount      json.Number `json:"amount"`
	Currency    string      `json:"currency"`
	OrderID     string      `json:"orderId"`
}
