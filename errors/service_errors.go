package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/mezonai/starledger/jsonx"
	"github.com/mezonai/starledger/ownership"
)

// ServiceErrorCode represents standardized error codes for every API surface
type ServiceErrorCode string

const (
	// General errors
	ErrCodeInternal ServiceErrorCode = "internal_error"

	// Validation errors
	ErrCodeInvalidRequest ServiceErrorCode = "invalid_request"

	// Ownership admission errors
	ErrCodeMalformedChallenge ServiceErrorCode = "malformed_challenge"
	ErrCodeExpiredChallenge   ServiceErrorCode = "expired_challenge"
	ErrCodeFutureChallenge    ServiceErrorCode = "future_challenge"
	ErrCodeInvalidSignature   ServiceErrorCode = "invalid_signature"

	// Lookup errors
	ErrCodeBlockNotFound ServiceErrorCode = "block_not_found"

	// System errors
	ErrCodeRateLimited ServiceErrorCode = "rate_limited"
)

// ServiceError represents a standardized error returned to API clients
type ServiceError struct {
	Code    ServiceErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	err, _ := jsonx.Marshal(ServiceError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(err)
}

// Error message constants - user-friendly and concise
const (
	ErrMsgInvalidRequest      = "Request format is invalid"
	ErrMsgMalformedChallenge  = "Ownership message is not a valid challenge"
	ErrMsgExpiredChallenge    = "Ownership challenge expired, request a new one"
	ErrMsgFutureChallenge     = "Ownership challenge timestamp is in the future"
	ErrMsgInvalidSignature    = "Signature does not match the wallet address"
	ErrMsgBlockNotFound       = "Block could not be found"
	ErrMsgInternal            = "Server error, please try again"
	ErrMsgRateLimited         = "Too many requests, please slow down"
	ErrMsgRequestBodyTooLarge = "Request body exceeds maximum allowed size (%d bytes)"
	ErrMsgShortTextTooLong    = "Short text length exceeds maximum (%d) for field '%s'"
	ErrMsgLongTextTooLong     = "Long text length exceeds maximum (%d) for field '%s'"
	ErrMsgInvalidCharacters   = "Field '%s' contains invalid characters"
	ErrMsgRequiredField       = "Field '%s' is required"
)

// NewError creates a new ServiceError and returns it as error interface
func NewError(code ServiceErrorCode, message string) error {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

func NewBlockNotFound() error {
	return NewError(ErrCodeBlockNotFound, ErrMsgBlockNotFound)
}

// FromError maps an error coming out of the ledger to a ServiceError. Errors
// already of that type are returned unchanged; anything unknown is internal.
func FromError(err error) *ServiceError {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if stderrors.As(err, &se) {
		return se
	}
	switch {
	case stderrors.Is(err, ownership.ErrMalformedChallenge):
		return &ServiceError{Code: ErrCodeMalformedChallenge, Message: ErrMsgMalformedChallenge}
	case stderrors.Is(err, ownership.ErrExpiredChallenge):
		return &ServiceError{Code: ErrCodeExpiredChallenge, Message: ErrMsgExpiredChallenge}
	case stderrors.Is(err, ownership.ErrFutureChallenge):
		return &ServiceError{Code: ErrCodeFutureChallenge, Message: ErrMsgFutureChallenge}
	case stderrors.Is(err, ownership.ErrInvalidSignature):
		return &ServiceError{Code: ErrCodeInvalidSignature, Message: ErrMsgInvalidSignature}
	default:
		return &ServiceError{Code: ErrCodeInternal, Message: ErrMsgInternal}
	}
}

// HTTPStatus is the status code REST handlers answer a code with.
func (c ServiceErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeInvalidRequest, ErrCodeMalformedChallenge, ErrCodeExpiredChallenge, ErrCodeFutureChallenge:
		return http.StatusBadRequest
	case ErrCodeInvalidSignature:
		return http.StatusUnauthorized
	case ErrCodeBlockNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
