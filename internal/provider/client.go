package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/frahmantamala/checkout-gateway/pkg/metrics"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseBody = 1 << 20

	outcomeSuccess     = "success"
	outcomeRejected    = "rejected"
	outcomeNoReference = "no_reference"
	outcomeMalformed   = "malformed"
	outcomeTransport   = "transport_error"
	outcomeCircuitOpen = "circuit_open"
)

// Client issues exactly one outbound call per checkout. It never retries.
type Client struct {
	baseURL    string
	shape      Shape
	auth       Authenticator
	timeout    time.Duration
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	tracer     trace.Tracer
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	shape, err := NewShape(cfg)
	if err != nil {
		return nil, err
	}

	auth, err := NewAuthenticator(cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if logger == nil {
		logger = slog.Default()
	}

	client := &Client{
		baseURL:    strings.TrimRight(cfg.APIEndpoint, "/"),
		shape:      shape,
		auth:       auth,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("github.com/frahmantamala/checkout-gateway/internal/provider"),
		logger:     logger,
	}

	if cfg.Breaker.Enabled {
		client.breaker = newBreaker(cfg.Breaker, logger)
	}

	logger.Info("payment provider client ready",
		"shape", shape.Name(),
		"api_endpoint", client.baseURL,
		"timeout", timeout,
		"configured", auth.Configured(),
		"circuit_breaker", cfg.Breaker.Enabled)

	return client, nil
}

func newBreaker(cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "payment-provider",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// client-side faults and upstream 4xx say nothing about provider health
			if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrNoCheckoutReference) {
				return true
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})
}

// Configured reports whether real credentials were supplied.
func (c *Client) Configured() bool {
	return c.auth.Configured()
}

func (c *Client) ShapeName() string {
	return c.shape.Name()
}

// CreateCheckout sends the order to the provider. Non-2xx answers come back
// as *APIError; a 2xx without a checkout reference as ErrNoCheckoutReference.
func (c *Client) CreateCheckout(ctx context.Context, order Order) (*Session, error) {
	if c.breaker == nil {
		return c.createCheckout(ctx, order)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.createCheckout(ctx, order)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.ObserveProviderCall(c.shape.Name(), outcomeCircuitOpen, 0)
		c.logger.Warn("provider call short-circuited", "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}
	return result.(*Session), nil
}

func (c *Client) createCheckout(ctx context.Context, order Order) (*Session, error) {
	ctx, span := c.tracer.Start(ctx, "provider.CreateCheckout",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("checkout.shape", c.shape.Name()),
			attribute.String("checkout.order_id", order.ID),
			attribute.String("checkout.currency", order.Currency),
		))
	defer span.End()

	start := time.Now()
	session, outcome, err := c.send(ctx, order)
	metrics.ObserveProviderCall(c.shape.Name(), outcome, time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return session, nil
}

func (c *Client) send(ctx context.Context, order Order) (*Session, string, error) {
	jsonData, err := json.Marshal(c.shape.Payload(order))
	if err != nil {
		return nil, outcomeMalformed, fmt.Errorf("failed to marshal checkout payload: %w", err)
	}

	url := c.baseURL + c.shape.Path()
	c.logger.Info("creating checkout with provider",
		"shape", c.shape.Name(),
		"order_id", order.ID,
		"url", url,
		"payload", string(jsonData))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, outcomeTransport, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	c.auth.Apply(httpReq)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, outcomeTransport, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, outcomeTransport, fmt.Errorf("failed to read provider response: %w", err)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := decodeAPIError(resp.StatusCode, body)
		c.logger.Error("payment provider returned error",
			"order_id", order.ID,
			"status", resp.StatusCode,
			"message", apiErr.Message,
			"response", string(body))
		return nil, outcomeRejected, apiErr
	}

	session, err := c.shape.Decode(body)
	if errors.Is(err, ErrNoCheckoutReference) {
		c.logger.Error("provider response has no checkout reference",
			"order_id", order.ID,
			"status", resp.StatusCode,
			"response", string(body))
		return nil, outcomeNoReference, err
	}
	if err != nil {
		c.logger.Error("failed to decode provider response",
			"order_id", order.ID,
			"error", err,
			"response", string(body))
		return nil, outcomeMalformed, err
	}

	c.logger.Info("checkout created with provider",
		"order_id", order.ID,
		"checkout_id", session.ID,
		"has_token", session.Token != "",
		"has_url", session.URL != "")

	return session, outcomeSuccess, nil
}

// decodeAPIError reads a provider error body as JSON when possible and falls
// back to the raw text otherwise.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err == nil && decoded != nil {
		apiErr.Details = decoded
		if msg, ok := decoded["message"].(string); ok && msg != "" {
			apiErr.Message = msg
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		apiErr.Details = text
		apiErr.Message = text
	}

	if apiErr.Message == "" {
		apiErr.Message = "Unknown error from payment provider"
	}
	return apiErr
}
