package swapi

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error classes reported by Classify
const (
	ClassNetwork   = "network"
	ClassStatus    = "status"
	ClassMalformed = "malformed"
	ClassCanceled  = "canceled"
	ClassTimeout   = "timeout"
	ClassReference = "reference"
	ClassUnknown   = "unknown"
)

var (
	// ErrNotFound is matched by a StatusError carrying 404
	ErrNotFound = errors.New("swapi: not found")
	// ErrForeignReference is returned for reference URLs outside the configured API host
	ErrForeignReference = errors.New("swapi: reference outside api host")
	// ErrInvalidPage is returned for page numbers below 1
	ErrInvalidPage = errors.New("swapi: page must be >= 1")
)

// TransportError wraps a failure to reach the API at all
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("swapi: request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is returned for non-2xx responses
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("swapi: %s status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("swapi: %s status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// DecodeError is returned when a response body is not the expected shape
type DecodeError struct {
	URL   string
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("swapi: decode %s: %v", e.URL, e.Err)
	case e.Field != "":
		return fmt.Sprintf("swapi: decode %s: missing required field %q", e.URL, e.Field)
	default:
		return fmt.Sprintf("swapi: decode %s: malformed response", e.URL)
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Classify maps an error from this package onto a coarse class for logs and metrics
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var (
		statusErr    *StatusError
		decodeErr    *DecodeError
		transportErr *TransportError
		netErr       net.Error
	)

	switch {
	case errors.Is(err, context.Canceled):
		return ClassCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	case errors.Is(err, ErrForeignReference), errors.Is(err, ErrInvalidPage):
		return ClassReference
	case errors.As(err, &statusErr):
		return ClassStatus
	case errors.As(err, &decodeErr):
		return ClassMalformed
	case errors.As(err, &netErr) && netErr.Timeout():
		return ClassTimeout
	case errors.As(err, &transportErr):
		return ClassNetwork
	default:
		return ClassUnknown
	}
}
