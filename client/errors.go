package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"eventease/registration"
)

var (
	// ErrNetwork covers transport failures and responses outside the 2xx range
	// that no more specific error describes.
	ErrNetwork               = errors.New("network error")
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrMalformedResponse     = errors.New("malformed response")
	ErrDuplicateRegistration = registration.ErrDuplicateRegistration
	ErrValidation            = registration.ErrValidation
)

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
	Detail  string
	kind    error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api: %d %s", e.Status, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.kind }

func classify(status int, message string) error {
	lower := strings.ToLower(message)
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict && strings.Contains(lower, "already registered"):
		return ErrDuplicateRegistration
	case status == http.StatusUnauthorized, status == http.StatusForbidden, strings.Contains(lower, "malformed jwt"):
		return ErrUnauthorized
	case status == http.StatusBadRequest:
		return ErrValidation
	}
	return ErrNetwork
}
