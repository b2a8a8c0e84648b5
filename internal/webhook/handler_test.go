package webhook_test

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/checkout-gateway/internal"
	"github.com/frahmantamala/checkout-gateway/internal/core/events"
	"github.com/frahmantamala/checkout-gateway/internal/transport"
	"github.com/frahmantamala/checkout-gateway/internal/webhook"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(GinkgoWriter, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// recorder collects every event delivered to it.
type recorder struct {
	mu     sync.Mutex
	events []*events.PaymentNotificationEvent
}

func (r *recorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event.(*events.PaymentNotificationEvent))
	return nil
}

func (r *recorder) received() []*events.PaymentNotificationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*events.PaymentNotificationEvent(nil), r.events...)
}

type fakePublisher struct {
	mu       sync.Mutex
	keys     []string
	payloads [][]byte
	err      error
	closed   bool
}

func (p *fakePublisher) Publish(_ context.Context, key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, payload)
	return p.err
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

var _ = Describe("Handler", func() {
	var (
		bus      *events.EventBus
		rec      *recorder
		handler  *webhook.Handler
		response *httptest.ResponseRecorder
	)

	post := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/webhook/helio", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	expectAcknowledged := func() {
		Expect(response.Code).To(Equal(http.StatusOK))
		var body map[string]interface{}
		Expect(json.Unmarshal(response.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(Equal(map[string]interface{}{"received": true}))
	}

	BeforeEach(func() {
		bus = events.NewEventBus(testLogger())
		rec = &recorder{}
		bus.Subscribe(events.AllEvents, rec.handle)

		dispatcher := webhook.NewDispatcher(bus, testLogger())
		handler = webhook.NewHandler(transport.NewBaseHandler(testLogger()), dispatcher)
		response = httptest.NewRecorder()
	})

	DescribeTable("acknowledges every known kind and routes it to its event type",
		func(kind, eventType string) {
			handler.HandleNotification(response, post(`{"event":"`+kind+`","transactionId":"tx_1"}`))

			expectAcknowledged()
			Eventually(rec.received).Should(HaveLen(1))
			got := rec.received()[0]
			Expect(got.EventType()).To(Equal(eventType))
			Expect(got.Kind).To(Equal(kind))
			Expect(got.Data).To(HaveKeyWithValue("transactionId", "tx_1"))
		},
		Entry("success", webhook.KindPaymentSuccess, events.EventTypePaymentSucceeded),
		Entry("failed", webhook.KindPaymentFailed, events.EventTypePaymentFailed),
		Entry("pending", webhook.KindPaymentPending, events.EventTypePaymentPending),
	)

	It("acknowledges an unknown kind", func() {
		handler.HandleNotification(response, post(`{"event":"NOT_A_REAL_EVENT"}`))

		expectAcknowledged()
		Eventually(rec.received).Should(HaveLen(1))
		Expect(rec.received()[0].EventType()).To(Equal(events.EventTypePaymentUnknown))
		Expect(rec.received()[0].Kind).To(Equal("NOT_A_REAL_EVENT"))
	})

	DescribeTable("acknowledges bodies it cannot make sense of",
		func(body string) {
			handler.HandleNotification(response, post(body))

			expectAcknowledged()
			Eventually(rec.received).Should(HaveLen(1))
			Expect(rec.received()[0].EventType()).To(Equal(events.EventTypePaymentUnknown))
		},
		Entry("empty", ""),
		Entry("not json", "event=PAYMENT_SUCCESS"),
		Entry("json array", `[1,2,3]`),
		Entry("event is not a string", `{"event":42}`),
		Entry("no event field", `{"status":"paid"}`),
	)

	It("acknowledges even when a subscriber fails", func() {
		bus.Subscribe(events.EventTypePaymentSucceeded, func(context.Context, events.Event) error {
			return stderrors.New("fulfillment unavailable")
		})
		bus.Subscribe(events.EventTypePaymentSucceeded, func(context.Context, events.Event) error {
			panic("boom")
		})

		handler.HandleNotification(response, post(`{"event":"PAYMENT_SUCCESS"}`))

		expectAcknowledged()
		Eventually(rec.received).Should(HaveLen(1))
	})

	It("keeps delivering after the request context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		seen := make(chan error, 1)
		bus.Subscribe(events.EventTypePaymentPending, func(ctx context.Context, _ events.Event) error {
			seen <- ctx.Err()
			return nil
		})

		handler.HandleNotification(response, post(`{"event":"PAYMENT_PENDING"}`).WithContext(ctx))
		cancel()

		expectAcknowledged()
		Eventually(seen).Should(Receive(BeNil()))
	})
})

var _ = Describe("Dispatcher", func() {
	It("always acknowledges, with or without subscribers", func() {
		dispatcher := webhook.NewDispatcher(events.NewEventBus(testLogger()), testLogger())

		ack := dispatcher.Dispatch(context.Background(), webhook.Notification{Event: "WHATEVER"})

		Expect(ack.Received).To(BeTrue())
	})

	It("runs the default handlers without error", func() {
		h := webhook.NewEventHandler(testLogger())
		ctx := context.Background()
		body := map[string]interface{}{"event": webhook.KindPaymentSuccess}

		Expect(h.HandlePaymentSucceeded(ctx, events.NewPaymentNotificationEvent(events.EventTypePaymentSucceeded, webhook.KindPaymentSuccess, body))).To(Succeed())
		Expect(h.HandlePaymentFailed(ctx, events.NewPaymentNotificationEvent(events.EventTypePaymentFailed, webhook.KindPaymentFailed, nil))).To(Succeed())
		Expect(h.HandlePaymentPending(ctx, events.NewPaymentNotificationEvent(events.EventTypePaymentPending, webhook.KindPaymentPending, nil))).To(Succeed())
		Expect(h.HandleUnknown(ctx, events.NewPaymentNotificationEvent(events.EventTypePaymentUnknown, "OTHER", nil))).To(Succeed())
	})

	It("rejects events of the wrong type", func() {
		h := webhook.NewEventHandler(testLogger())

		err := h.HandlePaymentSucceeded(context.Background(), events.BaseEvent{Type: events.EventTypePaymentSucceeded})

		Expect(err).To(MatchError(ContainSubstring("expected PaymentNotificationEvent")))
	})
})

var _ = Describe("Forwarder", func() {
	var (
		bus        *events.EventBus
		publisher  *fakePublisher
		dispatcher *webhook.Dispatcher
	)

	BeforeEach(func() {
		bus = events.NewEventBus(testLogger())
		publisher = &fakePublisher{}
		webhook.NewForwarder(publisher, testLogger()).Register(bus)
		dispatcher = webhook.NewDispatcher(bus, testLogger())
	})

	It("forwards known kinds keyed by kind with the full body", func() {
		dispatcher.Dispatch(context.Background(), webhook.Notification{
			Event: webhook.KindPaymentSuccess,
			Body:  map[string]interface{}{"event": webhook.KindPaymentSuccess, "amount": "25"},
		})

		Expect(bus.Drain(context.Background())).To(Succeed())
		Expect(publisher.published()).To(ConsistOf(webhook.KindPaymentSuccess))

		var forwarded map[string]interface{}
		Expect(json.Unmarshal(publisher.payloads[0], &forwarded)).To(Succeed())
		Expect(forwarded).To(HaveKeyWithValue("event", webhook.KindPaymentSuccess))
		Expect(forwarded).To(HaveKeyWithValue("type", events.EventTypePaymentSucceeded))
		Expect(forwarded).To(HaveKeyWithValue("data", HaveKeyWithValue("amount", "25")))
		Expect(forwarded).To(HaveKey("id"))
	})

	It("collapses arbitrary kinds into a single key", func() {
		dispatcher.Dispatch(context.Background(), webhook.Notification{Event: "SOMETHING_NEW"})

		Expect(bus.Drain(context.Background())).To(Succeed())
		Expect(publisher.published()).To(ConsistOf(webhook.KindUnknown))
	})

	It("still acknowledges when the broker rejects the event", func() {
		publisher.err = stderrors.New("broker down")

		ack := dispatcher.Dispatch(context.Background(), webhook.Notification{Event: webhook.KindPaymentFailed})

		Expect(ack.Received).To(BeTrue())
		Expect(bus.Drain(context.Background())).To(Succeed())
		Expect(publisher.published()).To(HaveLen(1))
	})
})

var _ = Describe("NewPublisher", func() {
	It("returns no publisher when forwarding is disabled", func() {
		for _, sink := range []string{"", webhook.SinkNone} {
			publisher, err := webhook.NewPublisher(internal.WebhookConfig{Sink: sink})
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher).To(BeNil())
		}
	})

	It("builds a kafka publisher without dialing", func() {
		publisher, err := webhook.NewPublisher(internal.WebhookConfig{
			Sink:         webhook.SinkKafka,
			KafkaBrokers: []string{"localhost:9092"},
			KafkaTopic:   "checkout.webhook",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(publisher).To(BeAssignableToTypeOf(&webhook.KafkaPublisher{}))
		Expect(publisher.Close()).To(Succeed())
	})

	It("rejects an unknown sink", func() {
		_, err := webhook.NewPublisher(internal.WebhookConfig{Sink: "carrier-pigeon"})
		Expect(err).To(MatchError(ContainSubstring("unknown webhook sink")))
	})
})
