package validation

import (
	"fmt"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/checkout-gateway/internal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) Required(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		missing := false
		switch v := value.(type) {
		case nil:
			missing = true
		case string:
			missing = v == ""
		case *string:
			missing = v == nil || *v == ""
		case *decimal.Decimal:
			missing = v == nil
		}
		if missing {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), code)
		}
		return nil
	})
	return fv
}

// Positive rejects decimals that are zero or negative. A nil pointer is left
// to Required.
func (fv *FieldValidator) Positive(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		var d decimal.Decimal
		switch v := value.(type) {
		case decimal.Decimal:
			d = v
		case *decimal.Decimal:
			if v == nil {
				return nil
			}
			d = *v
		default:
			return nil
		}
		if !d.IsPositive() {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be greater than 0", fv.FieldName), code)
		}
		return nil
	})
	return fv
}

// Bounded rejects decimals with more than maxDigits integer digits or more
// than maxScale fractional places. It inspects coefficient and exponent only,
// never the expanded value.
func (fv *FieldValidator) Bounded(maxDigits, maxScale int, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		var d decimal.Decimal
		switch v := value.(type) {
		case decimal.Decimal:
			d = v
		case *decimal.Decimal:
			if v == nil {
				return nil
			}
			d = *v
		default:
			return nil
		}

		exp := int64(d.Exponent())
		if exp < 0 && -exp > int64(maxScale) {
			return errors.NewValidationFieldError(fv.FieldName,
				fmt.Sprintf("%s must have at most %d decimal places", fv.FieldName, maxScale), code)
		}
		if int64(d.NumDigits())+exp > int64(maxDigits) {
			return errors.NewValidationFieldError(fv.FieldName,
				fmt.Sprintf("%s must have at most %d integer digits", fv.FieldName, maxDigits), code)
		}
		return nil
	})
	return fv
}

// Errors runs every validator and collects the field errors in declaration order.
func (v *ValidationBuilder) Errors() []errors.ValidationError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}

			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
				continue
			}

			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	return validationErrors
}

const (
	MaxAmountDigits = 18
	MaxAmountScale  = 8
)

// ValidateCheckoutAmount enforces a present, strictly positive amount of
// bounded size.
func ValidateCheckoutAmount(amount *decimal.Decimal) *errors.AppError {
	validator := NewValidator()
	validator.Field("amount", amount).
		Required(errors.ErrCodeInvalidAmount).
		Positive(errors.ErrCodeInvalidAmount).
		Bounded(MaxAmountDigits, MaxAmountScale, errors.ErrCodeInvalidAmount)

	if validationErrors := validator.Errors(); len(validationErrors) > 0 {
		return errors.NewInvalidAmountError(errors.ValidationErrors{Errors: validationErrors})
	}
	return nil
}
