package provider

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ShapeCharge = "charge"
	ShapeDirect = "direct"

	AuthAPIKey = "api_key"
	AuthBearer = "bearer"
)

var (
	// ErrNoCheckoutReference means the provider answered 2xx without the
	// token/url the selected shape needs to hand back to the client.
	ErrNoCheckoutReference = errors.New("failed to create checkout")
	ErrCircuitOpen         = errors.New("payment provider temporarily unavailable")
	ErrUnknownShape        = errors.New("unknown checkout shape")
	ErrUnknownAuth         = errors.New("unknown auth scheme")
)

// Order is the per-request data a payload is built from.
type Order struct {
	ID        string
	Amount    decimal.Decimal
	Currency  string
	CreatedAt time.Time
}

// NewOrder stamps a fresh order id. Ids are time-derived with a random suffix
// so two orders created within the same millisecond never collide.
func NewOrder(amount decimal.Decimal, currency string, now time.Time) Order {
	return Order{
		ID:        fmt.Sprintf("order_%d_%s", now.UnixMilli(), uuid.NewString()[:8]),
		Amount:    amount,
		Currency:  currency,
		CreatedAt: now.UTC(),
	}
}

// Session is the decoded success body of a charge or checkout creation.
type Session struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	URL   string `json:"url"`
}

// APIError carries a non-2xx provider answer.
type APIError struct {
	StatusCode int
	Message    string
	Details    interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

type Config struct {
	Shape               string
	Auth                string
	APIEndpoint         string
	PublicAPIKey        string
	SecretAPIKey        string
	WalletID            string
	PaylinkID           string
	PricingCurrencyID   string
	RecipientCurrencyID string
	CheckoutCurrency    string
	PaymentMethods      []string
	Timeout             time.Duration
	Breaker             BreakerConfig
}

type BreakerConfig struct {
	Enabled             bool
	MaxRequests         uint32
	Interval            time.Duration
	OpenTimeout         time.Duration
	ConsecutiveFailures uint32
}
