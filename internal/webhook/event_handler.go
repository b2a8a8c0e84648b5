package webhook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/checkout-gateway/internal/core/events"
)

// EventHandler holds the default per-kind reactions. They only log: order
// fulfillment hooks in here.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) HandlePaymentSucceeded(ctx context.Context, event events.Event) error {
	n, err := notificationFrom(event)
	if err != nil {
		return err
	}
	h.logger.Info("payment successful", "event_id", n.EventID(), "payload", n.Data)
	return nil
}

func (h *EventHandler) HandlePaymentFailed(ctx context.Context, event events.Event) error {
	n, err := notificationFrom(event)
	if err != nil {
		return err
	}
	h.logger.Warn("payment failed", "event_id", n.EventID(), "payload", n.Data)
	return nil
}

func (h *EventHandler) HandlePaymentPending(ctx context.Context, event events.Event) error {
	n, err := notificationFrom(event)
	if err != nil {
		return err
	}
	h.logger.Info("payment pending", "event_id", n.EventID(), "payload", n.Data)
	return nil
}

func (h *EventHandler) HandleUnknown(ctx context.Context, event events.Event) error {
	n, err := notificationFrom(event)
	if err != nil {
		return err
	}
	h.logger.Info("unknown event", "event", n.Kind, "event_id", n.EventID())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentSucceeded, h.HandlePaymentSucceeded)
	eventBus.Subscribe(events.EventTypePaymentFailed, h.HandlePaymentFailed)
	eventBus.Subscribe(events.EventTypePaymentPending, h.HandlePaymentPending)
	eventBus.Subscribe(events.EventTypePaymentUnknown, h.HandleUnknown)

	h.logger.Info("webhook event handlers registered",
		"handlers", []string{
			events.EventTypePaymentSucceeded,
			events.EventTypePaymentFailed,
			events.EventTypePaymentPending,
			events.EventTypePaymentUnknown,
		})
}

func notificationFrom(event events.Event) (*events.PaymentNotificationEvent, error) {
	n, ok := event.(*events.PaymentNotificationEvent)
	if !ok {
		return nil, fmt.Errorf("expected PaymentNotificationEvent, got %T", event)
	}
	return n, nil
}
