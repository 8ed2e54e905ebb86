package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies upstream failures.
type ErrorType string

const (
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error" // 400
	ErrorTypeAuthentication ErrorType = "authentication_error"  // 401
	ErrorTypePermission     ErrorType = "permission_error"      // 403
	ErrorTypeNotFound       ErrorType = "not_found_error"       // 404
	ErrorTypeRateLimit      ErrorType = "rate_limit_error"      // 429
	ErrorTypeAPI            ErrorType = "api_error"             // 5xx and transport failures
	ErrorTypeTimeout        ErrorType = "timeout_error"
	ErrorTypeEmptyResponse  ErrorType = "empty_response_error"
)

var ErrNoChoices = errors.New("completion returned no choices")

// ProviderError describes a failed call to the chat-completion service.
type ProviderError struct {
	Type       ErrorType
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		if e.Err != nil {
			return fmt.Sprintf("[%s][%s][%d] %s: %v", e.Provider, e.Type, e.StatusCode, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s][%s][%d] %s", e.Provider, e.Type, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s] %s: %v", e.Provider, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s] %s", e.Provider, e.Type, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) IsTimeout() bool {
	return e.Type == ErrorTypeTimeout
}

func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Type:     ErrorTypeAPI,
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}

func NewTimeoutError(provider string, err error) *ProviderError {
	return &ProviderError{
		Type:     ErrorTypeTimeout,
		Provider: provider,
		Message:  "request timed out",
		Err:      err,
	}
}

// ErrorTypeForStatus maps an upstream HTTP status to an ErrorType.
func ErrorTypeForStatus(status int) ErrorType {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return ErrorTypeInvalidRequest
	case http.StatusUnauthorized:
		return ErrorTypeAuthentication
	case http.StatusForbidden:
		return ErrorTypePermission
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	default:
		return ErrorTypeAPI
	}
}
