package checkout

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	errors "github.com/frahmantamala/checkout-gateway/internal"
	"github.com/frahmantamala/checkout-gateway/internal/provider"
	"github.com/frahmantamala/checkout-gateway/pkg/logger"
)

const DefaultCurrency = "USD"

type Service struct {
	provider        ProviderAPI
	defaultCurrency string
	now             func() time.Time
	logger          *slog.Logger
}

type Option func(*Service)

// WithClock replaces time.Now for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithDefaultCurrency(currency string) Option {
	return func(s *Service) {
		if currency != "" {
			s.defaultCurrency = currency
		}
	}
}

func NewService(p ProviderAPI, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.LoggerWrapper()
	}
	s := &Service{
		provider:        p,
		defaultCurrency: DefaultCurrency,
		now:             time.Now,
		logger:          log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitiateCheckout validates the request, checks that the provider has real
// credentials and makes exactly one outbound call. Every returned error is an
// *errors.AppError.
func (s *Service) InitiateCheckout(ctx context.Context, req *CheckoutRequest) (*Checkout, error) {
	log := logger.From(ctx)
	if req == nil {
		req = &CheckoutRequest{}
	}

	if err := req.Validate(); err != nil {
		log.Warn("checkout rejected", "reason", "invalid amount", "error", err)
		return nil, err
	}

	if !s.provider.Configured() {
		log.Error("checkout rejected", "reason", "payment provider not configured")
		return nil, errors.ErrProviderNotConfigured
	}

	order := provider.NewOrder(*req.Amount, req.currencyOr(s.defaultCurrency), s.now())
	log = log.With("order_id", order.ID)
	log.Info("checkout requested", "amount", order.Amount.String(), "currency", order.Currency)

	session, err := s.provider.CreateCheckout(ctx, order)
	if err != nil {
		appErr := s.mapProviderError(err)
		log.Error("checkout failed",
			"code", appErr.Code,
			"status", appErr.StatusCode,
			"error", err)
		return nil, appErr
	}

	log.Info("checkout created", "charge_id", session.ID)

	return &Checkout{
		Success:     true,
		ChargeToken: session.Token,
		CheckoutURL: session.URL,
		ChargeID:    session.ID,
		Amount:      json.Number(order.Amount.String()),
		Currency:    order.Currency,
		OrderID:     order.ID,
	}, nil
}

func (s *Service) mapProviderError(err error) *errors.AppError {
	var apiErr *provider.APIError
	switch {
	case stderrors.As(err, &apiErr):
		return errors.NewProviderError(apiErr.Message, errors.ErrCodeProviderRejected, apiErr.StatusCode).
			WithDetails(apiErr.Details).
			WithCause(err)
	case stderrors.Is(err, provider.ErrNoCheckoutReference):
		return errors.NewProviderError(provider.ErrNoCheckoutReference.Error(), errors.ErrCodeCheckoutNotCreated, 0).
			WithCause(err)
	case stderrors.Is(err, provider.ErrCircuitOpen):
		return errors.NewProviderError(provider.ErrCircuitOpen.Error(), errors.ErrCodeProviderUnavailable, http.StatusServiceUnavailable).
			WithCause(err)
	default:
		return errors.NewInternalError(err.Error(), err)
	}
}
