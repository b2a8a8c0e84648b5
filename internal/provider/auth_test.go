package provider_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/checkout-gateway/internal/provider"
)

var _ = Describe("Authenticator", func() {
	DescribeTable("IsPlaceholder",
		func(key string, placeholder bool) {
			Expect(provider.IsPlaceholder(key)).To(Equal(placeholder))
		},
		Entry("empty", "", true),
		Entry("blank", "   ", true),
		Entry("env default public", "HELIO_PUBLIC_KEY", true),
		Entry("env default secret", "HELIO_SECRET_KEY", true),
		Entry("template public", "YOUR_PUBLIC_API_KEY", true),
		Entry("template secret", "YOUR_SECRET_API_KEY", true),
		Entry("real key", "pk_live_abc", false),
	)

	It("defaults to api key headers for the charge shape", func() {
		auth, err := provider.NewAuthenticator(provider.Config{Shape: provider.ShapeCharge, PublicAPIKey: "pk", SecretAPIKey: "sk"})
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/charge", nil)
		auth.Apply(req)

		Expect(auth.Configured()).To(BeTrue())
		Expect(req.Header.Get("x-api-key")).To(Equal("pk"))
		Expect(req.Header.Get("x-secret-key")).To(Equal("sk"))
	})

	It("needs both keys for api key auth", func() {
		auth, err := provider.NewAuthenticator(provider.Config{Auth: provider.AuthAPIKey, PublicAPIKey: "pk", SecretAPIKey: provider.PlaceholderSecretKey})
		Expect(err).NotTo(HaveOccurred())
		Expect(auth.Configured()).To(BeFalse())
	})

	It("defaults to a bearer token for the direct shape", func() {
		auth, err := provider.NewAuthenticator(provider.Config{Shape: provider.ShapeDirect, SecretAPIKey: "sk"})
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		auth.Apply(req)

		Expect(auth.Configured()).To(BeTrue())
		Expect(req.Header.Get("Authorization")).To(Equal("Bearer sk"))
	})

	It("lets configuration override the per-shape default", func() {
		auth, err := provider.NewAuthenticator(provider.Config{Shape: provider.ShapeCharge, Auth: provider.AuthBearer, SecretAPIKey: "sk"})
		Expect(err).NotTo(HaveOccurred())
		Expect(auth).To(BeAssignableToTypeOf(&provider.BearerAuth{}))
	})

	It("rejects unknown schemes", func() {
		_, err := provider.NewAuthenticator(provider.Config{Auth: "basic"})
		Expect(err).To(MatchError(provider.ErrUnknownAuth))
	})
})
