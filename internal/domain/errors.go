package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means the session is missing or expired
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNotAuthorized means the session is valid but lacks permission
	ErrNotAuthorized = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
	// ErrInvalidSelection means a class id outside the loaded label set
	ErrInvalidSelection = errors.New("invalid class selection")
	// ErrMissingSelection means a submit without any class selected
	ErrMissingSelection = errors.New("no class selected")
	// ErrNetwork covers transport failures and unclassified non-2xx responses
	ErrNetwork = errors.New("network or server error")

	ErrBusy       = errors.New("another operation is in progress")
	ErrSuperseded = errors.New("response discarded: task was reopened")
	ErrCompleted  = errors.New("task session is completed")
	ErrNotReady   = errors.New("task session is not ready")
)

// APIError is a failed call to the remote API
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Err, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", e.Err, e.Status)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Err, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ClassifyStatus maps an HTTP status to the error taxonomy. It returns nil
// for 2xx statuses.
func ClassifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == 401:
		return ErrUnauthenticated
	case status == 403:
		return ErrNotAuthorized
	case status == 404:
		return ErrNotFound
	default:
		return ErrNetwork
	}
}
