package hsjwt

import (
	"errors"
	"fmt"
)

// ErrorCode represents builder and verifier error categories.
type ErrorCode string

const (
	ErrCodeAlgorithmUnknown       ErrorCode = "algorithm_unknown"
	ErrCodeAlgorithmUnsupported   ErrorCode = "algorithm_unsupported"
	ErrCodeInvalidUserClaims      ErrorCode = "invalid_user_claims"
	ErrCodeReservedClaimCollision ErrorCode = "reserved_claim_collision"
	ErrCodeInvalidConfig          ErrorCode = "invalid_config"
	ErrCodeTokenNotFound          ErrorCode = "token_not_found"
	ErrCodeTokenMalformed         ErrorCode = "token_malformed"
	ErrCodeTokenInvalid           ErrorCode = "token_invalid"
	ErrCodeTokenExpired           ErrorCode = "token_expired"
)

var errorMessages = map[ErrorCode]string{
	ErrCodeAlgorithmUnknown:       "algorithm does not exist",
	ErrCodeAlgorithmUnsupported:   "only HS256 algorithm is supported",
	ErrCodeInvalidUserClaims:      "user claims must be a string-keyed map",
	ErrCodeReservedClaimCollision: "user claims use reserved names",
	ErrCodeInvalidConfig:          "jwt config invalid",
	ErrCodeTokenNotFound:          "token is required",
	ErrCodeTokenMalformed:         "token needs two dots",
	ErrCodeTokenInvalid:           "token is invalid",
	ErrCodeTokenExpired:           "token is expired",
}

// Error wraps builder and verifier errors with a stable code and message.
// Message is safe to show to API clients; Err carries the internal cause.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = string(e.Code)
	}
	if e.Err == nil {
		return base
	}
	return fmt.Sprintf("%s: %v", base, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, err error) error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = string(code)
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// newErrorf builds an error whose public message carries call-specific detail.
func newErrorf(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf reports the ErrorCode carried by err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// PublicMessage returns the client-facing message of err without the wrapped cause.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return string(e.Code)
	}
	return err.Error()
}
