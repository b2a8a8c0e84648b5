package webhook

import (
	"encoding/json"
	"strings"

	"github.com/frahmantamala/checkout-gateway/internal/core/events"
)

// Provider event kinds carried in the "event" field of a webhook body.
const (
	KindPaymentSuccess = "PAYMENT_SUCCESS"
	KindPaymentFailed  = "PAYMENT_FAILED"
	KindPaymentPending = "PAYMENT_PENDING"
	KindUnknown        = "UNKNOWN"
)

var eventTypes = map[string]string{
	KindPaymentSuccess: events.EventTypePaymentSucceeded,
	KindPaymentFailed:  events.EventTypePaymentFailed,
	KindPaymentPending: events.EventTypePaymentPending,
}

// Notification is one decoded webhook delivery.
type Notification struct {
	Event string
	Body  map[string]interface{}
}

// Known reports whether the event kind has a dedicated handler.
func (n Notification) Known() bool {
	_, ok := eventTypes[n.Event]
	return ok
}

func (n Notification) eventType() string {
	if t, ok := eventTypes[n.Event]; ok {
		return t
	}
	return events.EventTypePaymentUnknown
}

// metricLabel keeps the label set bounded no matter what senders put in "event".
func (n Notification) metricLabel() string {
	if n.Known() {
		return n.Event
	}
	return KindUnknown
}

type Acknowledgement struct {
	Received bool `json:"received"`
}

// ParseNotification decodes a webhook body. A non-object body or a missing or
// non-string "event" field yields an unknown notification, never an error
// the sender would see.
func ParseNotification(raw []byte) (Notification, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return Notification{Body: map[string]interface{}{}}, err
	}
	if body == nil {
		body = map[string]interface{}{}
	}

	event, _ := body["event"].(string)
	return Notification{Event: strings.TrimSpace(event), Body: body}, nil
}
