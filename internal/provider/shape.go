package provider

import (
	"encoding/json"
	"fmt"
	"time"
)

// Shape builds the provider-specific request body and knows which field of
// the success body references the created checkout.
type Shape interface {
	Name() string
	Path() string
	Payload(order Order) interface{}
	Decode(body []byte) (*Session, error)
}

func NewShape(cfg Config) (Shape, error) {
	switch cfg.Shape {
	case "", ShapeCharge:
		return &ChargeShape{
			PricingCurrencyID:   cfg.PricingCurrencyID,
			WalletID:            cfg.WalletID,
			RecipientCurrencyID: cfg.RecipientCurrencyID,
		}, nil
	case ShapeDirect:
		methods := cfg.PaymentMethods
		if len(methods) == 0 {
			methods = []string{"card"}
		}
		currency := cfg.CheckoutCurrency
		if currency == "" {
			currency = "USD"
		}
		return &DirectShape{
			Currency:       currency,
			PaymentMethods: methods,
			PaylinkID:      cfg.PaylinkID,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, cfg.Shape)
	}
}

// ChargeShape creates a charge against a wallet: POST /charge.
type ChargeShape struct {
	PricingCurrencyID   string
	WalletID            string
	RecipientCurrencyID string
}

type chargeRecipient struct {
	WalletID   string `json:"walletId"`
	CurrencyID string `json:"currencyId"`
}

type chargeMetadata struct {
	CustomerTimestamp string      `json:"customerTimestamp"`
	OrderID           string      `json:"orderId"`
	Amount            json.Number `json:"amount"`
	Currency          string      `json:"currency"`
}

type ChargePayload struct {
	PricingCurrency string            `json:"pricingCurrency"`
	PricingAmount   json.Number       `json:"pricingAmount"`
	Recipients      []chargeRecipient `json:"recipients"`
	AdditionalJSON  chargeMetadata    `json:"additionalJSON"`
}

func (s *ChargeShape) Name() string { return ShapeCharge }

func (s *ChargeShape) Path() string { return "/charge" }

func (s *ChargeShape) Payload(order Order) interface{} {
	amount := json.Number(order.Amount.String())
	return &ChargePayload{
		PricingCurrency: s.PricingCurrencyID,
		PricingAmount:   amount,
		Recipients: []chargeRecipient{
			{WalletID: s.WalletID, CurrencyID: s.RecipientCurrencyID},
		},
		AdditionalJSON: chargeMetadata{
			CustomerTimestamp: order.CreatedAt.Format(time.RFC3339Nano),
			OrderID:           order.ID,
			Amount:            amount,
			Currency:          order.Currency,
		},
	}
}

func (s *ChargeShape) Decode(body []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode charge response: %w", err)
	}
	if session.Token == "" {
		return nil, ErrNoCheckoutReference
	}
	return &session, nil
}

// DirectShape opens a hosted card checkout: POST /checkout.
type DirectShape struct {
	Currency       string
	PaymentMethods []string
	PaylinkID      string
}

type directMetadata struct {
	OrderID           string `json:"orderId"`
	CustomerTimestamp string `json:"customerTimestamp"`
}

type DirectPayload struct {
	Amount         json.Number    `json:"amount"`
	Currency       string         `json:"currency"`
	PaymentMethods []string       `json:"paymentMethods"`
	PaylinkID      string         `json:"paylinkId,omitempty"`
	Metadata       directMetadata `json:"metadata"`
}

func (s *DirectShape) Name() string { return ShapeDirect }

func (s *DirectShape) Path() string { return "/checkout" }

func (s *DirectShape) Payload(order Order) interface{} {
	return &DirectPayload{
		Amount:         json.Number(order.Amount.String()),
		Currency:       s.Currency,
		PaymentMethods: s.PaymentMethods,
		PaylinkID:      s.PaylinkID,
		Metadata: directMetadata{
			OrderID:           order.ID,
			CustomerTimestamp: order.CreatedAt.Format(time.RFC3339Nano),
		},
	}
}

func (s *DirectShape) Decode(body []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}
	if session.URL == "" && session.Token == "" {
		return nil, ErrNoCheckoutReference
	}
	return &session, nil
}
