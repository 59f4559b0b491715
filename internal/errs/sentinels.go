// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across session/pipeline/service layers.
var (
	// ErrUnauthorized indicates the backend rejected the credential (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is authenticated but not allowed (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the requested entity does not exist (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrServer indicates a backend failure (HTTP 500).
	ErrServer = errors.New("server error")

	// ErrRequestFailed indicates any other non-2xx reply.
	ErrRequestFailed = errors.New("request failed")

	// ErrNetwork indicates no response was received (connectivity, timeout).
	ErrNetwork = errors.New("network error")

	// ErrConfig indicates the request could not be built or dispatched.
	ErrConfig = errors.New("request configuration error")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCredential indicates an operation needs a stored credential and there is none.
	ErrNoCredential = errors.New("no credential (login required)")
)

// InvalidError is a validation failure with a user-facing message.
type InvalidError struct{ Msg string }

func (e *InvalidError) Error() string { return e.Msg }

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InvalidError) Unwrap() error { return ErrInvalidInput }

// Invalid returns an *InvalidError with a formatted message.
func Invalid(format string, args ...any) error {
	return &InvalidError{Msg: fmt.Sprintf(format, args...)}
}
