package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags a pipeline failure. It is the programmatic taxonomy callers branch on.
type Kind int

const (
	KindOther Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindServerError
	KindNetworkError
	KindConfigError
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindServerError:
		return "ServerError"
	case KindNetworkError:
		return "NetworkError"
	case KindConfigError:
		return "ConfigError"
	default:
		return "Other"
	}
}

// Failure is the single error type returned by the request pipeline.
//
// Status is zero for failures that never produced a response (network and
// configuration errors). Message is what the user was (or would have been)
// shown. Cause keeps the transport error, if any, for logging.
type Failure struct {
	Kind    Kind
	Status  int
	Message string
	Cause   error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", f.Kind, f.Status, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Unwrap maps the kind onto its sentinel so errors.Is works across layers.
// The transport cause, when present, is reachable as well.
func (f *Failure) Unwrap() []error {
	out := []error{f.Kind.sentinel()}
	if f.Cause != nil {
		out = append(out, f.Cause)
	}
	return out
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindServerError:
		return ErrServer
	case KindNetworkError:
		return ErrNetwork
	case KindConfigError:
		return ErrConfig
	default:
		return ErrRequestFailed
	}
}

// KindForStatus maps a non-2xx HTTP status onto the taxonomy.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusInternalServerError:
		return KindServerError
	default:
		return KindOther
	}
}

// AsFailure extracts the *Failure from err's chain. It returns nil if not found.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return nil
}

// IsNotFound reports whether err is a NotFound failure. Used by callers of
// lookups whose absence is an expected outcome.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
