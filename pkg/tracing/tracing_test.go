package tracing_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel"

	"github.com/frahmantamala/checkout-gateway/pkg/tracing"
)

var _ = Describe("Init", func() {
	It("installs the W3C propagator even when disabled", func() {
		shutdown, err := tracing.Init(context.Background(), tracing.Config{Enabled: false})

		Expect(err).NotTo(HaveOccurred())
		Expect(otel.GetTextMapPropagator().Fields()).To(ContainElements("traceparent", "baggage"))
		Expect(shutdown(context.Background())).To(Succeed())
	})

	It("builds an exporter lazily when enabled", func() {
		shutdown, err := tracing.Init(context.Background(), tracing.Config{
			Enabled:      true,
			ServiceName:  "checkout-gateway-test",
			SamplingRate: 1,
			Endpoint:     "127.0.0.1:4318",
			Insecure:     true,
		})
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(shutdown(ctx)).To(Succeed())
	})
})
