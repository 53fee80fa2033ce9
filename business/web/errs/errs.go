// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/namegen/foundation/namegen"
	"github.com/ardanlabs/namegen/foundation/wallet"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (re *Trusted) Error() string {
	return re.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (re *Trusted) Unwrap() error {
	return re.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var re *Trusted
	return errors.As(err, &re)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var re *Trusted
	if !errors.As(err, &re) {
		return nil
	}
	return re
}

// FromLedger wraps the known wallet and program client failures with the
// status code that describes them. The message of any other error is still
// shown since the only remedy is for the user to read it.
func FromLedger(err error) error {
	switch {
	case errors.Is(err, wallet.ErrNotInstalled),
		errors.Is(err, wallet.ErrNotConnected):
		return NewTrusted(err, http.StatusPreconditionFailed)

	case errors.Is(err, namegen.ErrAccountNotFound):
		return NewTrusted(err, http.StatusNotFound)

	case errors.Is(err, namegen.ErrAlreadyInitialized):
		return NewTrusted(err, http.StatusConflict)

	case errors.Is(err, namegen.ErrNotOwner):
		return NewTrusted(err, http.StatusForbidden)

	case errors.Is(err, namegen.ErrInvalidName),
		errors.Is(err, wallet.ErrInvalidKey):
		return NewTrusted(err, http.StatusBadRequest)

	case errors.Is(err, namegen.ErrConfirmTimeout):
		return NewTrusted(err, http.StatusGatewayTimeout)
	}

	return NewTrusted(err, http.StatusBadGateway)
}
