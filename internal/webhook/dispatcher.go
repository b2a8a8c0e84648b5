package webhook

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/checkout-gateway/internal/core/events"
	"github.com/frahmantamala/checkout-gateway/pkg/metrics"
)

type Dispatcher struct {
	bus    *events.EventBus
	logger *slog.Logger
}

func NewDispatcher(bus *events.EventBus, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{bus: bus, logger: logger}
}

// Dispatch hands the notification to the bus and acknowledges it. Subscribers
// run asynchronously; their failures never reach the sender.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) Acknowledgement {
	metrics.IncWebhookEvent(n.metricLabel())

	if !n.Known() {
		d.logger.Warn("unknown webhook event", "event", n.Event)
	}

	event := events.NewPaymentNotificationEvent(n.eventType(), n.Event, n.Body)
	if err := d.bus.Publish(ctx, event); err != nil {
		d.logger.Error("failed to publish webhook event",
			"event", n.Event,
			"event_id", event.EventID(),
			"error", err)
	}

	return Acknowledgement{Received: true}
}
