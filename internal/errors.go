package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION_ERROR"
	ErrorTypeConfiguration ErrorType = "CONFIGURATION_ERROR"
	ErrorTypeProvider      ErrorType = "PROVIDER_ERROR"
	ErrorTypeInternal      ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount      ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidRequestBody ErrorCode = "INVALID_REQUEST_BODY"

	ErrCodeProviderNotConfigured ErrorCode = "PROVIDER_NOT_CONFIGURED"

	ErrCodeProviderRejected    ErrorCode = "PROVIDER_REJECTED"
	ErrCodeCheckoutNotCreated  ErrorCode = "CHECKOUT_NOT_CREATED"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError is the normalized failure returned across package boundaries and
// rendered as {"error", "code", "message", "details"} on the wire.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Title      string      `json:"error"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithStatus(status int) *AppError {
	e.StatusCode = status
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Title:      "Validation failed",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Title:      "Validation failed",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

// NewInvalidAmountError is the InvalidAmount kind: client input fault.
func NewInvalidAmountError(details ValidationErrors) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeInvalidAmount,
		Title:      "Invalid amount",
		Message:    "Amount must be greater than 0",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

// NewConfigurationError is the ConfigurationError kind: deployment fault.
func NewConfigurationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConfiguration,
		Code:       ErrCodeProviderNotConfigured,
		Title:      "Configuration error",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewProviderError is the ProviderError kind: upstream fault. status is the
// upstream HTTP status when one is available.
func NewProviderError(message string, code ErrorCode, status int) *AppError {
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	return &AppError{
		Type:       ErrorTypeProvider,
		Code:       code,
		Title:      "Failed to create charge",
		Message:    message,
		StatusCode: status,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Title:      "Internal server error",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrProviderNotConfigured = NewConfigurationError("Please configure your payment provider API keys")
	ErrInvalidRequestBody    = NewValidationError("invalid request body", ErrCodeInvalidRequestBody)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, e
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title   string      `json:"error"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Title:   e.Title,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
