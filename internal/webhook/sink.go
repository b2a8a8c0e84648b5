package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/segmentio/kafka-go"

	"github.com/frahmantamala/checkout-gateway/internal"
	"github.com/frahmantamala/checkout-gateway/internal/core/events"
)

const (
	SinkNone  = "none"
	SinkNATS  = "nats"
	SinkKafka = "kafka"
)

// Publisher forwards an encoded webhook event to an external broker.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
	Close() error
}

// NewPublisher builds the broker publisher selected by cfg.Sink. It returns
// nil, nil when forwarding is disabled.
func NewPublisher(cfg internal.WebhookConfig) (Publisher, error) {
	switch cfg.Sink {
	case "", SinkNone:
		return nil, nil
	case SinkNATS:
		publisher, err := NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	case SinkKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unknown webhook sink %q", cfg.Sink)
	}
}

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("checkout-gateway"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: nc, subject: subject}, nil
}

// Publish sends to <subject>.<key>, e.g. checkout.webhook.payment_success.
func (p *NATSPublisher) Publish(_ context.Context, key string, payload []byte) error {
	subject := p.subject + "." + strings.ToLower(key)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("nats publish to %s: %w", subject, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, payload []byte) error {
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("kafka write to %s: %w", p.writer.Topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// envelope is the wire form of a forwarded webhook event.
type envelope struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Event      string                 `json:"event"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// Forwarder subscribes to every webhook event on the bus and relays it to a
// Publisher. Failures are logged; the sender was acknowledged long ago.
type Forwarder struct {
	publisher Publisher
	timeout   time.Duration
	logger    *slog.Logger
}

func NewForwarder(publisher Publisher, logger *slog.Logger) *Forwarder {
	return &Forwarder{publisher: publisher, timeout: 10 * time.Second, logger: logger}
}

func (f *Forwarder) Handle(ctx context.Context, event events.Event) error {
	n, err := notificationFrom(event)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(envelope{
		ID:         n.EventID(),
		Type:       n.EventType(),
		Event:      n.Kind,
		OccurredAt: n.OccurredAt(),
		Data:       n.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook event: %w", err)
	}

	key := n.Kind
	if _, known := eventTypes[key]; !known {
		key = KindUnknown
	}

	ctx, cancel := internal.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.publisher.Publish(ctx, key, payload); err != nil {
		return fmt.Errorf("failed to forward webhook event %s: %w", n.EventID(), err)
	}

	f.logger.Debug("webhook event forwarded", "event_id", n.EventID(), "key", key)
	return nil
}

func (f *Forwarder) Register(bus *events.EventBus) {
	bus.Subscribe(events.AllEvents, f.Handle)
}
