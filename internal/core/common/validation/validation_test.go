package validation_test

import (
	"github.com/shopspring/decimal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/frahmantamala/checkout-gateway/internal"
	"github.com/frahmantamala/checkout-gateway/internal/core/common/validation"
)

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var _ = Describe("ValidateCheckoutAmount", func() {
	DescribeTable("accepts positive amounts",
		func(value string) {
			Expect(validation.ValidateCheckoutAmount(amount(value))).To(BeNil())
		},
		Entry("whole", "25"),
		Entry("cents", "0.01"),
		Entry("high precision", "19.999999"),
		Entry("largest whole amount", "999999999999999999"),
		Entry("smallest fraction", "0.00000001"),
		Entry("exponent within bounds", "2.5e3"),
	)

	DescribeTable("rejects everything else as INVALID_AMOUNT",
		func(value *decimal.Decimal, message string) {
			appErr := validation.ValidateCheckoutAmount(value)

			Expect(appErr).NotTo(BeNil())
			Expect(appErr.Code).To(Equal(errors.ErrCodeInvalidAmount))
			Expect(appErr.Message).To(Equal("Amount must be greater than 0"))

			details, ok := appErr.Details.(errors.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors).To(HaveLen(1))
			Expect(details.Errors[0].Field).To(Equal("amount"))
			Expect(details.Errors[0].Message).To(Equal(message))
		},
		Entry("missing", (*decimal.Decimal)(nil), "amount is required"),
		Entry("zero", amount("0"), "amount must be greater than 0"),
		Entry("negative", amount("-5"), "amount must be greater than 0"),
		Entry("huge exponent", amount("1e100000"), "amount must have at most 18 integer digits"),
		Entry("nineteen integer digits", amount("1000000000000000000"), "amount must have at most 18 integer digits"),
		Entry("tiny exponent", amount("1e-100000"), "amount must have at most 8 decimal places"),
		Entry("nine decimal places", amount("1.000000001"), "amount must have at most 8 decimal places"),
	)
})

var _ = Describe("ValidationBuilder", func() {
	It("collects errors across fields in declaration order", func() {
		v := validation.NewValidator()
		first := v.Field("currency", "")
		v.Field("amount", amount("-1")).Positive(errors.ErrCodeInvalidAmount)
		first.Required(errors.ErrCodeValidationFailed)

		errs := v.Errors()

		Expect(errs).To(HaveLen(2))
		Expect(errs[0].Field).To(Equal("currency"))
		Expect(errs[0].Code).To(Equal(string(errors.ErrCodeValidationFailed)))
		Expect(errs[1].Field).To(Equal("amount"))
		Expect(errs[1].Code).To(Equal(string(errors.ErrCodeInvalidAmount)))
	})

	It("leaves nil pointers to Required", func() {
		v := validation.NewValidator()
		v.Field("amount", (*decimal.Decimal)(nil)).Positive(errors.ErrCodeInvalidAmount)

		Expect(v.Errors()).To(BeEmpty())
	})
})
