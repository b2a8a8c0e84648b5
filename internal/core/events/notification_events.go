package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentSucceeded = "payment.succeeded"
	EventTypePaymentFailed    = "payment.failed"
	EventTypePaymentPending   = "payment.pending"
	EventTypePaymentUnknown   = "payment.unknown"
)

// PaymentNotificationEvent wraps one provider webhook delivery. Kind is the
// provider's raw event name; Data is the full delivered body.
type PaymentNotificationEvent struct {
	BaseEvent
	Kind string `json:"kind"`
}

func NewPaymentNotificationEvent(eventType, kind string, body map[string]interface{}) *PaymentNotificationEvent {
	if body == nil {
		body = map[string]interface{}{}
	}
	return &PaymentNotificationEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now().UTC(),
			Data:      body,
		},
		Kind: kind,
	}
}
