package events_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/checkout-gateway/internal/core/events"
)

var _ = Describe("EventBus", func() {
	var (
		bus *events.EventBus
		ctx context.Context
	)

	event := func(eventType string) events.Event {
		return events.NewPaymentNotificationEvent(eventType, "PAYMENT_SUCCESS", map[string]interface{}{"event": "PAYMENT_SUCCESS"})
	}

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(GinkgoWriter, nil)))
		ctx = context.Background()
	})

	It("delivers only to handlers of the published type", func() {
		var succeeded, failed int32
		bus.Subscribe(events.EventTypePaymentSucceeded, func(context.Context, events.Event) error {
			atomic.AddInt32(&succeeded, 1)
			return nil
		})
		bus.Subscribe(events.EventTypePaymentFailed, func(context.Context, events.Event) error {
			atomic.AddInt32(&failed, 1)
			return nil
		})

		Expect(bus.Publish(ctx, event(events.EventTypePaymentSucceeded))).To(Succeed())
		Expect(bus.Drain(ctx)).To(Succeed())

		Expect(atomic.LoadInt32(&succeeded)).To(Equal(int32(1)))
		Expect(atomic.LoadInt32(&failed)).To(BeZero())
	})

	It("delivers every type to wildcard subscribers", func() {
		var seen int32
		bus.Subscribe(events.AllEvents, func(context.Context, events.Event) error {
			atomic.AddInt32(&seen, 1)
			return nil
		})

		Expect(bus.Publish(ctx, event(events.EventTypePaymentSucceeded))).To(Succeed())
		Expect(bus.Publish(ctx, event(events.EventTypePaymentUnknown))).To(Succeed())
		Expect(bus.Drain(ctx)).To(Succeed())

		Expect(atomic.LoadInt32(&seen)).To(Equal(int32(2)))
	})

	It("is a no-op without subscribers", func() {
		Expect(bus.Publish(ctx, event(events.EventTypePaymentPending))).To(Succeed())
		Expect(bus.PublishSync(ctx, event(events.EventTypePaymentPending))).To(Succeed())
	})

	It("recovers a panicking subscriber and keeps delivering", func() {
		var delivered int32
		bus.Subscribe(events.EventTypePaymentSucceeded, func(context.Context, events.Event) error {
			panic("subscriber exploded")
		})
		bus.Subscribe(events.EventTypePaymentSucceeded, func(context.Context, events.Event) error {
			atomic.AddInt32(&delivered, 1)
			return nil
		})

		Expect(bus.Publish(ctx, event(events.EventTypePaymentSucceeded))).To(Succeed())
		Expect(bus.Publish(ctx, event(events.EventTypePaymentSucceeded))).To(Succeed())
		Expect(bus.Drain(ctx)).To(Succeed())

		Expect(atomic.LoadInt32(&delivered)).To(Equal(int32(2)))
	})

	It("surfaces handler failures and panics from PublishSync", func() {
		bus.Subscribe(events.EventTypePaymentFailed, func(context.Context, events.Event) error {
			return errors.New("nope")
		})
		Expect(bus.PublishSync(ctx, event(events.EventTypePaymentFailed))).To(MatchError(ContainSubstring("nope")))

		bus.Subscribe(events.EventTypePaymentPending, func(context.Context, events.Event) error {
			panic("boom")
		})
		Expect(bus.PublishSync(ctx, event(events.EventTypePaymentPending))).To(MatchError(ContainSubstring("panicked")))
	})

	It("stops draining when the context expires", func() {
		release := make(chan struct{})
		DeferCleanup(func() { close(release) })
		bus.Subscribe(events.EventTypePaymentSucceeded, func(context.Context, events.Event) error {
			<-release
			return nil
		})
		Expect(bus.Publish(ctx, event(events.EventTypePaymentSucceeded))).To(Succeed())

		drainCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		Expect(bus.Drain(drainCtx)).To(MatchError(context.DeadlineExceeded))
	})

	It("stamps notification events with an id and time", func() {
		e := events.NewPaymentNotificationEvent(events.EventTypePaymentFailed, "PAYMENT_FAILED", nil)

		Expect(e.EventID()).NotTo(BeEmpty())
		Expect(e.OccurredAt()).To(BeTemporally("~", time.Now(), time.Second))
		Expect(e.Payload()).To(BeEmpty())
		Expect(e.Kind).To(Equal("PAYMENT_FAILED"))
	})
})
